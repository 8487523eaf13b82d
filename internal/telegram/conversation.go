package telegram

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"diet-wizard/internal/nutrition"
	"diet-wizard/internal/share"
	"diet-wizard/internal/telemetry"
	"diet-wizard/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type step int

const (
	stepIdle step = iota
	stepName
	stepWeight
	stepHeight
	stepAge
	stepGender
	stepLevel
	stepObjective
	stepResult
)

// Callback actions. Option callbacks carry "opt|<field>|<index>" to stay under
// Telegram's 64-byte callback data limit.
const (
	actionOption  = "opt"
	actionShare   = "share"
	actionRestart = "restart"
)

type prompt struct {
	field string
	label string
	hint  string
}

var prompts = map[step]prompt{
	stepName:      {field: wizard.FieldName, label: "Nome:", hint: "Digite seu nome..."},
	stepWeight:    {field: wizard.FieldWeight, label: "Seu peso atual:", hint: "Ex: 75.5"},
	stepHeight:    {field: wizard.FieldHeight, label: "Sua altura atual:", hint: "Ex: 1.75"},
	stepAge:       {field: wizard.FieldAge, label: "Sua idade atual:", hint: "Ex: 25"},
	stepGender:    {field: wizard.FieldGender, label: "Sexo:", hint: "Selecione seu sexo"},
	stepLevel:     {field: wizard.FieldLevel, label: "Selecione o nível de atividade física:", hint: "Selecione seu nível de atividade física"},
	stepObjective: {field: wizard.FieldObjective, label: "Selecione seu objetivo:", hint: "Selecione o seu objetivo"},
}

// conversation is one chat's position in the wizard plus its store.
type conversation struct {
	mu       sync.Mutex
	store    *wizard.Store
	step     step
	draftOne wizard.StepOne
	draftTwo wizard.StepTwo

	// session id whose result is being awaited in the background, if any
	awaiting string
	// guarded by Bot.mu
	lastActive time.Time
}

func (b *Bot) conversation(chatID int64) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.conversations[chatID]
	if !ok {
		c = &conversation{store: wizard.NewStore()}
		b.conversations[chatID] = c
	}
	c.lastActive = b.now()
	return c
}

// startWizard resets the chat's store and asks the first question.
func (b *Bot) startWizard(chatID, userID int64) {
	if b.limiter != nil && b.limiter.IsRateLimited(context.Background(), userKey(userID)) {
		b.sendText(chatID, "⏳ Você gerou muitas dietas em pouco tempo. Tente novamente em um minuto.")
		return
	}

	conv := b.conversation(chatID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	b.controller.Discard(conv.store.SessionID())
	sessionID := conv.store.Reset()
	conv.draftOne = wizard.StepOne{}
	conv.draftTwo = wizard.StepTwo{}
	conv.awaiting = ""
	conv.step = stepName
	telemetry.SessionStarted()
	log.Printf("Chat %d started wizard session %s", chatID, sessionID)

	b.sendMarkdown(chatID, "*Passo 1* · Vamos começar\n\n"+promptText(stepName), nil)
}

// handleAnswer consumes a free-text answer for the current first-page question.
func (b *Bot) handleAnswer(chatID, userID int64, text string) {
	conv := b.conversation(chatID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	switch conv.step {
	case stepIdle:
		b.sendText(chatID, helpText)
		return
	case stepGender, stepLevel, stepObjective:
		b.sendText(chatID, "Selecione uma das opções acima.")
		return
	case stepResult:
		b.sendText(chatID, "Use /novadieta para gerar uma nova dieta.")
		return
	}

	p := prompts[conv.step]
	if msg := wizard.ValidateField(p.field, text); msg != "" {
		b.sendMarkdown(chatID, "⚠️ "+escape(msg)+"\n\n"+promptText(conv.step), nil)
		return
	}

	switch conv.step {
	case stepName:
		conv.draftOne.Name = text
	case stepWeight:
		conv.draftOne.Weight = text
	case stepHeight:
		conv.draftOne.Height = text
	case stepAge:
		conv.draftOne.Age = text
	}

	if conv.step != stepAge {
		conv.step++
		b.sendMarkdown(chatID, promptText(conv.step), nil)
		return
	}

	if err := wizard.ValidateStepOne(conv.draftOne); err != nil {
		// Individual answers were checked; this only trips on a reset race.
		log.Printf("Step one rejected for chat %d: %v", chatID, err)
		conv.step = stepName
		b.sendMarkdown(chatID, "⚠️ Dados incompletos, vamos recomeçar.\n\n"+promptText(stepName), nil)
		return
	}
	conv.store.SetPageOne(conv.draftOne)
	conv.step = stepGender
	b.sendOptions(chatID, "*Passo 2* · Finalizando dieta\n\n", stepGender)
}

// handleOption consumes a second-page choice.
func (b *Bot) handleOption(chatID, userID int64, field, rawIndex string) {
	conv := b.conversation(chatID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	p, ok := prompts[conv.step]
	if !ok || p.field != field {
		// Stale keyboard from an earlier question or session.
		return
	}
	i, err := strconv.Atoi(rawIndex)
	if err != nil {
		return
	}
	value, ok := wizard.OptionValue(field, i)
	if !ok {
		return
	}

	switch conv.step {
	case stepGender:
		conv.draftTwo.Gender = value
		conv.step = stepLevel
		b.sendOptions(chatID, "", stepLevel)
		return
	case stepLevel:
		conv.draftTwo.Level = value
		conv.step = stepObjective
		b.sendOptions(chatID, "", stepObjective)
		return
	}

	conv.draftTwo.Objective = value
	if err := wizard.ValidateStepTwo(conv.draftTwo); err != nil {
		log.Printf("Step two rejected for chat %d: %v", chatID, err)
		conv.step = stepGender
		b.sendOptions(chatID, "⚠️ Dados incompletos.\n\n", stepGender)
		return
	}
	conv.store.SetPageTwo(conv.draftTwo)
	conv.step = stepResult
	b.enterResult(chatID, userID, conv)
}

// showResult re-enters the result view without issuing a new request.
func (b *Bot) showResult(chatID, userID int64) {
	conv := b.conversation(chatID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.step != stepResult {
		b.sendText(chatID, "Nenhuma dieta em andamento. Use /start para começar.")
		return
	}
	b.enterResult(chatID, userID, conv)
}

// enterResult shows the outcome for the conversation's session. conv.mu must be held.
func (b *Bot) enterResult(chatID, userID int64, conv *conversation) {
	outcome := b.controller.Enter(conv.store)
	sessionID := conv.store.SessionID()

	if outcome.Terminal() {
		text, keyboard := renderOutcome(outcome)
		b.sendMarkdown(chatID, text, keyboard)
		return
	}

	if conv.awaiting == sessionID {
		// The pending message already sent will be edited with the result.
		b.sendMarkdown(chatID, renderPending(), nil)
		return
	}

	messageID, err := b.sendMarkdown(chatID, renderPending(), nil)
	if err != nil {
		return
	}

	conv.awaiting = sessionID
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.awaitResult(chatID, userID, messageID, sessionID)
	}()
}

func (b *Bot) awaitResult(chatID, userID int64, messageID int, sessionID string) {
	wait := 2 * time.Minute
	if b.cfg.DietAPITimeout > 0 {
		wait = b.cfg.DietAPITimeout + 30*time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	outcome, err := b.controller.Wait(ctx, sessionID)

	conv := b.conversation(chatID)
	conv.mu.Lock()
	current := conv.store.SessionID()
	if conv.awaiting == sessionID {
		conv.awaiting = ""
	}
	conv.mu.Unlock()

	if err != nil {
		log.Printf("Stopped waiting for session %s: %v", sessionID, err)
		return
	}
	if current != sessionID {
		// The user restarted the wizard; this result belongs to a closed session.
		return
	}

	if outcome.Status == nutrition.StatusSucceeded && b.archive != nil {
		if err := b.archive.Save(ctx, userKey(userID), sessionID, outcome.Plan); err != nil {
			log.Printf("Warning: failed to save diet for user %d: %v", userID, err)
		}
	}

	text, keyboard := renderOutcome(outcome)
	b.editMarkdown(chatID, messageID, text, keyboard)
}

// handleShare sends the plain-text summary; failures are logged only.
func (b *Bot) handleShare(chatID int64) {
	conv := b.conversation(chatID)
	conv.mu.Lock()
	outcome := b.controller.Outcome(conv.store.SessionID())
	ready := conv.step == stepResult
	conv.mu.Unlock()

	if !ready || outcome.Status != nutrition.StatusSucceeded {
		return
	}

	sharer := &chatSharer{api: b.api, chatID: chatID}
	if err := share.Share(context.Background(), sharer, outcome.Plan); err != nil {
		telemetry.ShareFailed()
		log.Printf("Share failed for chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendOptions(chatID int64, header string, s step) {
	keyboard := optionsKeyboard(prompts[s].field)
	b.sendMarkdown(chatID, header+promptText(s), &keyboard)
}

// chatSharer shares by posting the summary as a plain message the user can forward.
type chatSharer struct {
	api    messenger
	chatID int64
}

func (s *chatSharer) Share(_ context.Context, msg share.Message) error {
	_, err := s.api.Send(tgbotapi.NewMessage(s.chatID, msg.Title+"\n\n"+msg.Message))
	return err
}
