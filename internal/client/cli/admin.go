package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/palavraviva/study-platform/internal/client/api"
)

// Admin dispatches the admin console subcommands. The server enforces the
// same rule; the local check keeps the prompts from being shown at all.
func (a *App) Admin(ctx context.Context, args []string) error {
	if !a.isAdmin() {
		return errAdminOnly
	}
	if len(args) == 0 {
		printlnFn("Uso: admin studies|newstudy|editstudy <id>|chapters <id>|newchapter <id>|editchapter <id>|authorize <email>")
		return nil
	}
	token, err := a.token(ctx)
	if err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("admin %s: argumento ausente", sub)
		}
		return nil
	}

	switch sub {
	case "studies":
		return a.adminStudies(ctx, token)
	case "newstudy":
		return a.adminSaveStudy(ctx, token, "")
	case "editstudy":
		if err := need(1); err != nil {
			return err
		}
		return a.adminSaveStudy(ctx, token, rest[0])
	case "chapters":
		if err := need(1); err != nil {
			return err
		}
		return a.adminChapters(ctx, token, rest[0])
	case "newchapter":
		if err := need(1); err != nil {
			return err
		}
		return a.adminNewChapter(ctx, token, rest[0])
	case "editchapter":
		if err := need(1); err != nil {
			return err
		}
		return a.adminEditChapter(ctx, token, rest[0])
	case "authorize":
		if err := need(1); err != nil {
			return err
		}
		added, err := a.api.AuthorizeUser(ctx, token, rest[0])
		if err != nil {
			return err
		}
		printlnFn("E-mail autorizado:", added.Email)
		return nil
	default:
		return fmt.Errorf("admin: subcomando desconhecido %q", sub)
	}
}

func (a *App) adminStudies(ctx context.Context, token string) error {
	studies, err := a.api.ListStudies(ctx, token)
	if err != nil {
		return err
	}
	for _, s := range studies {
		visibility := "oculto"
		if s.IsVisible {
			visibility = "visível"
		}
		printlnFn(fmt.Sprintf("%s  %-30s %s", s.ID, s.Title, visibility))
	}
	return nil
}

// adminSaveStudy creates a study, or updates id when it is set.
func (a *App) adminSaveStudy(ctx context.Context, token, id string) error {
	var in api.StudyPayload
	var err error
	if in.Title, err = a.ask("Título:"); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Descrição:", a.out); err != nil {
		return err
	}
	if in.CoverImageURL, err = a.ask("URL da capa (opcional):"); err != nil {
		return err
	}
	if in.IsVisible, err = GetYesNo(a.reader, "Visível na loja?", a.out); err != nil {
		return err
	}

	if id == "" {
		s, err := a.api.CreateStudy(ctx, token, in)
		if err != nil {
			return err
		}
		printlnFn("Estudo criado:", s.ID)
		return nil
	}
	if _, err := a.api.UpdateStudy(ctx, token, id, in); err != nil {
		return err
	}
	printlnFn("Estudo atualizado.")
	return nil
}

func (a *App) adminChapters(ctx context.Context, token, studyID string) error {
	chapters, err := a.api.ListChapters(ctx, token, studyID)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		printlnFn("Nenhum capítulo.")
	}
	for _, c := range chapters {
		printlnFn(fmt.Sprintf("%3d  %s  %s", c.ChapterNumber, c.ID, c.Title))
	}
	return nil
}

func (a *App) adminNewChapter(ctx context.Context, token, studyID string) error {
	next, err := a.api.NextChapterNumber(ctx, token, studyID)
	if err != nil {
		return err
	}
	in, err := a.chapterForm(next)
	if err != nil {
		return err
	}
	c, err := a.api.CreateChapter(ctx, token, studyID, in)
	if err != nil {
		return err
	}
	printlnFn("Capítulo criado:", c.ID)
	return nil
}

func (a *App) adminEditChapter(ctx context.Context, token, chapterID string) error {
	in, err := a.chapterForm(0)
	if err != nil {
		return err
	}
	if _, err := a.api.UpdateChapter(ctx, token, chapterID, in); err != nil {
		return err
	}
	printlnFn("Capítulo atualizado.")
	return nil
}

// chapterForm prompts for a chapter. suggested, when positive, is used for
// an empty number answer.
func (a *App) chapterForm(suggested int) (api.ChapterPayload, error) {
	var in api.ChapterPayload
	prompt := "Número do capítulo:"
	if suggested > 0 {
		prompt = fmt.Sprintf("Número do capítulo [%d]:", suggested)
	}
	raw, err := a.ask(prompt)
	if err != nil {
		return in, err
	}
	if raw == "" {
		in.ChapterNumber = suggested
	} else if in.ChapterNumber, err = strconv.Atoi(raw); err != nil {
		return in, fmt.Errorf("número inválido %q", raw)
	}

	if in.Title, err = a.ask("Título:"); err != nil {
		return in, err
	}
	if in.BibleText, err = GetMultiline(a.reader, "Texto bíblico:", a.out); err != nil {
		return in, err
	}
	if in.Explanation, err = GetMultiline(a.reader, "Explicação:", a.out); err != nil {
		return in, err
	}
	if in.Application, err = GetMultiline(a.reader, "Aplicação:", a.out); err != nil {
		return in, err
	}
	if in.AudioURL, err = a.ask("URL do áudio (opcional):"); err != nil {
		return in, err
	}
	return in, nil
}
