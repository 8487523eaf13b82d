package wizard

// Option is one selectable answer on the second page.
type Option struct {
	Label string
	Value string
}

var GenderOptions = []Option{
	{Label: "Masculino", Value: "Masculino"},
	{Label: "Feminino", Value: "Feminino"},
}

var LevelOptions = []Option{
	{Label: "Sedentário (pouco ou nenhuma atividade física)", Value: "Sedentário"},
	{Label: "Levemente ativo (exercicios de 1 a 3 vezes por semana)", Value: "Levemente ativo (exercicios de 1 a 3 vezes por semana)"},
	{Label: "Moderadamente ativo (exercicios de 3 a 5 vezes por semana)", Value: "Moderadamente ativo (exercicios de 3 a 5 vezes por semana)"},
	{Label: "Altamente ativo (exercicios de 5 a 7 vezes por semana)", Value: "Altamente ativo (exercicios de 5 a 7 vezes por semana)"},
}

var ObjectiveOptions = []Option{
	{Label: "Emagrecer", Value: "Emagrecer"},
	{Label: "Hipertrofia", Value: "Hipertrofia"},
	{Label: "Hipertrofia + Definição", Value: "Hipertrofia e Definição"},
	{Label: "Definição", Value: "Definição"},
}

// OptionsFor returns the choices offered for a second-page field.
func OptionsFor(field string) []Option {
	switch field {
	case FieldGender:
		return GenderOptions
	case FieldLevel:
		return LevelOptions
	case FieldObjective:
		return ObjectiveOptions
	}
	return nil
}

// OptionValue resolves the value at index i of a field's options.
func OptionValue(field string, i int) (string, bool) {
	opts := OptionsFor(field)
	if i < 0 || i >= len(opts) {
		return "", false
	}
	return opts[i].Value, true
}
