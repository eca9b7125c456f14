package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

func (a *App) Discover(ctx context.Context) error {
	sess, err := a.auth.GetCurrentSession(ctx)
	if err != nil {
		return err
	}
	token := ""
	if sess != nil {
		token = sess.AccessToken
	}

	studies, err := a.api.Discover(ctx, token)
	if err != nil {
		return err
	}
	if len(studies) == 0 {
		printlnFn("Nenhum estudo novo disponível.")
		return nil
	}
	for _, s := range studies {
		printlnFn(fmt.Sprintf("%s  %s", s.ID, s.Title))
		if s.Description != "" {
			printlnFn("    " + s.Description)
		}
	}
	return nil
}

func (a *App) Library(ctx context.Context) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	lib, err := a.api.Library(ctx, token)
	if err != nil {
		return err
	}
	a.store.SetNewStudyNotification(false)

	if len(lib) == 0 {
		printlnFn("Sua biblioteca está vazia. Use 'discover' para encontrar estudos.")
		return nil
	}
	for _, s := range lib {
		printlnFn(fmt.Sprintf("%s  %-30s %d/%d capítulos (%.0f%%)",
			s.ID, s.Title, s.CompletedChapters, s.TotalChapters, s.ProgressPercentage))
	}
	return nil
}

func (a *App) Acquire(ctx context.Context, studyID string) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	if _, err := a.api.Acquire(ctx, token, studyID); err != nil {
		return err
	}
	a.store.SetNewStudyNotification(true)
	printlnFn("Estudo adicionado à sua biblioteca.")
	return nil
}

func (a *App) Complete(ctx context.Context, chapterID string) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Anotações do diário (opcional):", a.out)
	if err != nil {
		return err
	}
	if _, err := a.api.CompleteChapter(ctx, token, chapterID, notes); err != nil {
		return err
	}
	if notes != "" {
		// The journal counter lives on the profile row.
		if err := a.store.Refetch(ctx); err != nil {
			return err
		}
	}
	printlnFn("Capítulo concluído.")
	return nil
}

type question struct {
	key     string
	prompt  string
	options []option
	multi   bool
}

type option struct {
	value string
	label string
}

var onboardingQuiz = []question{
	{key: "q1_age", prompt: "Qual é a sua idade?"},
	{key: "q1_gender", prompt: "Qual é o seu gênero?", options: []option{
		{"masculino", "Masculino"},
		{"feminino", "Feminino"},
		{"nao-informar", "Prefiro não informar"},
	}},
	{key: "q2", prompt: "Com que frequência você lê a Bíblia?", options: []option{
		{"diariamente", "Diariamente"},
		{"semanalmente", "Algumas vezes por semana"},
		{"raramente", "Raramente"},
		{"comecando", "Estou começando agora"},
	}},
	{key: "q7", prompt: "Quais temas mais interessam a você? (números separados por vírgula)", multi: true, options: []option{
		{"oracao", "Oração"},
		{"familia", "Família"},
		{"ansiedade", "Ansiedade"},
		{"proposito", "Propósito"},
		{"fe", "Fé"},
	}},
}

func (a *App) Onboarding(ctx context.Context) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}

	answers := make(map[string]any, len(onboardingQuiz))
	for _, q := range onboardingQuiz {
		v, err := a.answer(q)
		if err != nil {
			return err
		}
		if v != nil {
			answers[q.key] = v
		}
	}

	if err := a.api.CompleteOnboarding(ctx, token, answers); err != nil {
		return err
	}
	if err := a.store.Refetch(ctx); err != nil {
		return err
	}
	printlnFn("Personalizamos sua experiência. Bons estudos!")
	return nil
}

func (a *App) answer(q question) (any, error) {
	switch {
	case len(q.options) == 0:
		v, err := a.ask(q.prompt)
		if err != nil || v == "" {
			return nil, err
		}
		return v, nil
	case q.multi:
		labels := make([]string, len(q.options))
		for i, o := range q.options {
			labels[i] = fmt.Sprintf("%d) %s", i+1, o.label)
		}
		raw, err := a.ask(q.prompt + "\n  " + strings.Join(labels, "\n  "))
		if err != nil {
			return nil, err
		}
		picked := []string{}
		for _, part := range strings.Split(raw, ",") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &n); err == nil && n >= 1 && n <= len(q.options) {
				picked = append(picked, q.options[n-1].value)
			}
		}
		return picked, nil
	default:
		labels := make([]string, len(q.options))
		for i, o := range q.options {
			labels[i] = o.label
		}
		i, err := GetChoice(a.reader, q.prompt, labels, a.out)
		if err != nil || i < 0 {
			return nil, err
		}
		return q.options[i].value, nil
	}
}

func (a *App) PersonalData(ctx context.Context) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	data, err := a.api.PersonalData(ctx, token)
	if err != nil {
		return err
	}

	age := "Não informado"
	if data.Age != "" {
		age = data.Age + " anos"
	}
	email := ""
	if sess := a.store.Session(); sess != nil {
		email = sess.User.Email
	}
	printlnFn("Nome:     ", data.FirstName)
	printlnFn("Sobrenome:", data.LastName)
	printlnFn("E-mail:   ", email)
	printlnFn("Idade:    ", age)
	printlnFn("Gênero:   ", data.Gender)
	return nil
}

func (a *App) EditName(ctx context.Context) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	first, err := a.ask("Nome:")
	if err != nil {
		return err
	}
	last, err := a.ask("Sobrenome:")
	if err != nil {
		return err
	}
	if err := a.api.UpdateName(ctx, token, first, last); err != nil {
		return err
	}

	if sess := a.store.Session(); sess != nil {
		meta := sess.User.Metadata
		meta.FirstName, meta.LastName = first, last
		if err := a.auth.UpdateMetadata(meta); err != nil {
			a.log.Warn().Err(err).Msg("update session metadata")
		}
	}
	if err := a.store.Refetch(ctx); err != nil {
		return err
	}
	printlnFn("Dados atualizados:", domain.JoinName(first, last))
	return nil
}
