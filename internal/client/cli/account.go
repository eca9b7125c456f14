package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/palavraviva/study-platform/internal/client/api"
)

func (a *App) SignUp(ctx context.Context) error {
	email, err := a.ask("E-mail:")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
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

	if _, err := a.auth.SignUp(ctx, api.SignUpRequest{
		Email:     email,
		Password:  password,
		FirstName: first,
		LastName:  last,
	}); err != nil {
		return err
	}
	if err := a.store.Refetch(ctx); err != nil {
		return err
	}
	printlnFn("Conta criada. Responda ao questionário com 'onboarding'.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("E-mail:")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if _, err := a.auth.SignIn(ctx, email, password); err != nil {
		return err
	}
	// Settle the derivation started by the sign-in event before returning.
	if err := a.store.Refetch(ctx); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	printlnFn("Olá,", snap.Profile.Name(snap.Session.User.Email))
	if !snap.Profile.OnboardingCompleted {
		printlnFn("Você ainda não respondeu ao questionário inicial ('onboarding').")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	return a.store.Revalidate(ctx)
}

func (a *App) WhoAmI(context.Context) error {
	snap := a.store.Snapshot()
	if !snap.Authenticated() {
		printlnFn("Ninguém conectado.")
		return nil
	}
	p := snap.Profile
	printlnFn("Usuário:   ", snap.Session.User.Email)
	printlnFn("Nome:      ", p.Name("-"))
	printlnFn("Admin:     ", yesNo(snap.CanAccessAdmin()))
	printlnFn("Onboarding:", yesNo(p.OnboardingCompleted))
	printlnFn("Diário:    ", fmt.Sprintf("%d anotações", p.TotalJournalEntries))
	printlnFn("Pop-ups:   ", yesNo(p.EnablePopups))
	return nil
}

func (a *App) Refetch(ctx context.Context) error {
	return a.store.Refetch(ctx)
}

var errPasswordMismatch = errors.New("as senhas não coincidem")

func (a *App) ChangePassword(ctx context.Context) error {
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if password != confirm {
		return errPasswordMismatch
	}
	if _, err := a.auth.UpdateUser(ctx, api.UpdateUserRequest{Password: &password}); err != nil {
		return err
	}
	printlnFn("Senha alterada.")
	return nil
}

func (a *App) ChangeEmail(ctx context.Context) error {
	email, err := a.ask("Novo e-mail:")
	if err != nil {
		return err
	}
	sess, err := a.auth.UpdateUser(ctx, api.UpdateUserRequest{Email: &email})
	if err != nil {
		return err
	}
	if err := a.store.Refetch(ctx); err != nil {
		return err
	}
	printlnFn("E-mail alterado para", sess.User.Email)
	return nil
}

func yesNo(v bool) string {
	if v {
		return "sim"
	}
	return "não"
}
