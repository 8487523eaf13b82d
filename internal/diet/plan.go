package diet

// Meal is a single entry of a diet, in the order the service returned it.
type Meal struct {
	Name  string   `json:"nome"`
	Time  string   `json:"horario"`
	Foods []string `json:"alimentos"`
}

// Plan is the diet generated for a complete profile.
type Plan struct {
	Name        string   `json:"nome"`
	Objective   string   `json:"objetivo"`
	Meals       []Meal   `json:"refeicoes"`
	Supplements []string `json:"suplementos"`
}

// IsEmpty reports whether the plan carries nothing worth rendering or sharing.
func (p *Plan) IsEmpty() bool {
	return p == nil ||
		(p.Name == "" && p.Objective == "" && len(p.Meals) == 0 && len(p.Supplements) == 0)
}

// wire shapes use pointers so absent or null keys can be told apart from empty values.
type createResponse struct {
	Data *wirePlan `json:"data"`
}

type wirePlan struct {
	Name        *string     `json:"nome"`
	Objective   *string     `json:"objetivo"`
	Meals       *[]wireMeal `json:"refeicoes"`
	Supplements *[]string   `json:"suplementos"`
}

type wireMeal struct {
	Name  *string   `json:"nome"`
	Time  *string   `json:"horario"`
	Foods *[]string `json:"alimentos"`
}

func (r createResponse) toPlan() (*Plan, error) {
	w := r.Data
	if w == nil {
		return nil, malformed("missing data object")
	}
	switch {
	case w.Name == nil:
		return nil, malformed("missing data.nome")
	case w.Objective == nil:
		return nil, malformed("missing data.objetivo")
	case w.Meals == nil:
		return nil, malformed("missing data.refeicoes")
	case w.Supplements == nil:
		return nil, malformed("missing data.suplementos")
	}

	plan := &Plan{
		Name:        *w.Name,
		Objective:   *w.Objective,
		Meals:       make([]Meal, 0, len(*w.Meals)),
		Supplements: append([]string{}, (*w.Supplements)...),
	}
	for i, m := range *w.Meals {
		if m.Name == nil || m.Time == nil || m.Foods == nil {
			return nil, malformed("incomplete meal at data.refeicoes[%d]", i)
		}
		plan.Meals = append(plan.Meals, Meal{
			Name:  *m.Name,
			Time:  *m.Time,
			Foods: append([]string{}, (*m.Foods)...),
		})
	}

	if plan.IsEmpty() {
		return nil, malformed("empty diet")
	}
	return plan, nil
}
