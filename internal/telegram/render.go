package telegram

import (
	"fmt"
	"path/filepath"
	"strings"

	"diet-wizard/internal/diet"
	"diet-wizard/internal/history"
	"diet-wizard/internal/metrics"
	"diet-wizard/internal/nutrition"
	"diet-wizard/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🥗 Diet Wizard

/start ou /novadieta - monta uma nova dieta
/dieta - mostra a dieta atual
/historico - suas últimas dietas`

// supplementsEmptyMarker is shown in place of the supplements list when there is none.
const supplementsEmptyMarker = "Nenhum suplemento recomendado para este horário."

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func promptText(s step) string {
	p := prompts[s]
	return fmt.Sprintf("*%s*\n_%s_", p.label, p.hint)
}

func optionsKeyboard(field string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range wizard.OptionsFor(field) {
		data := fmt.Sprintf("%s|%s|%d", actionOption, field, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Label, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderPending() string {
	lines := strings.SplitN(nutrition.PendingMessage, "\n", 2)
	if len(lines) == 1 {
		return "⏳ *" + lines[0] + "*"
	}
	return fmt.Sprintf("⏳ *%s*\n_%s_", lines[0], lines[1])
}

// renderOutcome builds the result view for a terminal outcome.
func renderOutcome(o nutrition.Outcome) (string, *tgbotapi.InlineKeyboardMarkup) {
	switch o.Status {
	case nutrition.StatusSucceeded:
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📤 Compartilhar", actionShare),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Gerar nova dieta", actionRestart),
			),
		)
		return formatDietMarkdown(o.Plan), &keyboard
	case nutrition.StatusFailed:
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(nutrition.RetryMessage, actionRestart),
			),
		)
		return "❌ *" + o.Reason() + "*", &keyboard
	}
	return renderPending(), nil
}

// formatDietMarkdown renders the diet as a header followed by one card per meal.
func formatDietMarkdown(plan *diet.Plan) string {
	var sb strings.Builder
	sb.WriteString("🥗 *Minha dieta*\n\n")
	sb.WriteString(fmt.Sprintf("*Nome:* %s\n", escape(plan.Name)))
	sb.WriteString(fmt.Sprintf("*Foco:* %s\n\n", escape(plan.Objective)))

	sb.WriteString("*Refeições:*\n")
	for _, meal := range plan.Meals {
		// user content stays outside bold spans, where escapes are honored
		sb.WriteString(fmt.Sprintf("\n🍽 %s\n", escape(meal.Name)))
		sb.WriteString(fmt.Sprintf("⏰ Horário: %s\n", escape(meal.Time)))
		sb.WriteString("Alimentos:\n")
		for _, food := range meal.Foods {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(food)))
		}
	}

	sb.WriteString("\n💊 *Suplementos:*\n")
	if len(plan.Supplements) == 0 {
		sb.WriteString("_" + supplementsEmptyMarker + "_\n")
	}
	for _, s := range plan.Supplements {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(s)))
	}

	return sb.String()
}

func formatHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return "📚 *Histórico*\n\n_Nenhuma dieta gerada ainda._"
	}

	var sb strings.Builder
	sb.WriteString("📚 *Histórico*\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• *%s* · %s (%d refeições)\n",
			e.CreatedAt.Format("02/01/2006 15:04"),
			escape(e.Plan.Objective),
			len(e.Plan.Meals),
		))
	}
	return sb.String()
}

func formatMetricsReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Diet Fetches*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d fetches (%d ok, %d failed, avg %dms)\n",
			d.Date, d.Total(), d.Succeeded, d.Failed, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Active Sessions: %d\n", health.ActiveSessions))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

// dataDir is the directory that holds the database file.
func dataDir(dbPath string) string {
	return filepath.Dir(dbPath)
}
