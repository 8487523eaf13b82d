package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"diet-wizard/internal/config"
	"diet-wizard/internal/wizard"

	"github.com/golang-jwt/jwt/v5"
)

func anaProfile(t *testing.T) wizard.CompleteProfile {
	t.Helper()
	p := wizard.Profile{
		Name: "Ana", Weight: "60", Age: "30", Height: "1.65",
		Gender: "Feminino", Objective: "Emagrecer", Level: "Sedentário",
	}
	c, err := p.Complete()
	if err != nil {
		t.Fatalf("Failed to complete profile: %v", err)
	}
	return c
}

func newTestClient(url, secret string) *Client {
	return NewClient(&config.Config{
		DietAPIURL:     url,
		DietAPISecret:  secret,
		DietAPITimeout: 5 * time.Second,
	})
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/create" {
				t.Errorf("Expected POST /create, got %s %s", r.Method, r.URL.Path)
			}
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("Failed to decode payload: %v", err)
			}
			if len(payload) != 7 || payload["level"] != "Sedentário" || payload["height"] != "1.65" {
				t.Errorf("Unexpected payload: %v", payload)
			}
			if r.Header.Get("Authorization") != "" {
				t.Error("Expected no Authorization header without a secret")
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"data": {
				"nome": "Dieta Ana",
				"objetivo": "Emagrecer",
				"refeicoes": [
					{"nome": "Café", "horario": "08:00", "alimentos": ["Ovo", "Pão"]},
					{"nome": "Almoço", "horario": "12:00", "alimentos": ["Arroz", "Feijão", "Frango"]}
				],
				"suplementos": []
			}}`)
		}))
		defer server.Close()

		plan, err := newTestClient(server.URL, "").Create(context.Background(), anaProfile(t))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if plan.Name != "Dieta Ana" {
			t.Errorf("Expected name 'Dieta Ana', got '%s'", plan.Name)
		}
		if len(plan.Meals) != 2 || plan.Meals[0].Name != "Café" || plan.Meals[1].Name != "Almoço" {
			t.Fatalf("Expected meals in received order, got %+v", plan.Meals)
		}
		if !reflect.DeepEqual(plan.Meals[1].Foods, []string{"Arroz", "Feijão", "Frango"}) {
			t.Errorf("Expected foods in received order, got %v", plan.Meals[1].Foods)
		}
		if plan.Supplements == nil || len(plan.Supplements) != 0 {
			t.Errorf("Expected empty, non-nil supplements, got %#v", plan.Supplements)
		}
	})

	t.Run("SignedRequest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
				return []byte("s3cret"), nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/create"))
			if err != nil {
				t.Errorf("Expected a valid token, got %v", err)
			}
			fmt.Fprintln(w, `{"data": {"nome": "D", "objetivo": "O", "refeicoes": [], "suplementos": ["Whey"]}}`)
		}))
		defer server.Close()

		if _, err := newTestClient(server.URL, "s3cret").Create(context.Background(), anaProfile(t)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("EmptyMealList", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"data": {"nome": "D", "objetivo": "O", "refeicoes": [], "suplementos": []}}`)
		}))
		defer server.Close()

		plan, err := newTestClient(server.URL, "").Create(context.Background(), anaProfile(t))
		if err != nil {
			t.Fatalf("Expected a named diet without meals to be accepted, got %v", err)
		}
		if plan.Name != "D" || len(plan.Meals) != 0 {
			t.Errorf("Unexpected plan %+v", plan)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "").Create(context.Background(), anaProfile(t))
		var terr *TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
		if terr.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", terr.StatusCode)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(url, "").Create(context.Background(), anaProfile(t))
		var terr *TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("Expected TransportError, got %v", err)
		}
	})
}

func TestCreateMalformed(t *testing.T) {
	cases := map[string]string{
		"NotJSON":         `<html>oops</html>`,
		"MissingData":     `{"nome": "Dieta"}`,
		"NullData":        `{"data": null}`,
		"EmptyData":       `{"data": {}}`,
		"MissingMeals":    `{"data": {"nome": "D", "objetivo": "O", "suplementos": []}}`,
		"IncompleteMeal":  `{"data": {"nome": "D", "objetivo": "O", "refeicoes": [{"nome": "Café"}], "suplementos": []}}`,
		"WrongFieldType":  `{"data": {"nome": 1, "objetivo": "O", "refeicoes": [], "suplementos": []}}`,
		"AllFieldsBlank":  `{"data": {"nome": "", "objetivo": "", "refeicoes": [], "suplementos": []}}`,
		"NullSupplements": `{"data": {"nome": "D", "objetivo": "O", "refeicoes": [], "suplementos": null}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer server.Close()

			plan, err := newTestClient(server.URL, "").Create(context.Background(), anaProfile(t))
			if plan != nil {
				t.Errorf("Expected no plan, got %+v", plan)
			}
			var merr *MalformedResponseError
			if !errors.As(err, &merr) {
				t.Fatalf("Expected MalformedResponseError, got %v", err)
			}
		})
	}
}
