package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"soundwars/internal/apperr"
	"soundwars/internal/auth"
	"soundwars/internal/domain"
)

const strongPassword = "Str0ng!pass"

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.authSvc.Register(ctx, RegisterInput{Email: " Artist@Example.com ", Username: "artist_1", Password: strongPassword, Role: "artist"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !sess.RequiresPayment || sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Errorf("session = %+v", sess)
	}
	if sess.User.Email != "artist@example.com" || !sess.User.HasRole(domain.RoleArtist) || !sess.User.HasRole(domain.RoleUser) {
		t.Errorf("user = %+v", sess.User)
	}

	_, err = e.authSvc.Register(ctx, RegisterInput{Email: "artist@example.com", Username: "other", Password: strongPassword})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate email: err = %v, want conflict", err)
	}
	_, err = e.authSvc.Register(ctx, RegisterInput{Email: "x@example.com", Username: "artist_1", Password: strongPassword})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate username: err = %v, want conflict", err)
	}
	_, err = e.authSvc.Register(ctx, RegisterInput{Email: "y@example.com", Username: "weak", Password: "password"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("weak password: err = %v, want validation", err)
	}
	_, err = e.authSvc.Register(ctx, RegisterInput{Email: "z@example.com", Username: "boss", Password: strongPassword, Role: "admin"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("admin self-registration: err = %v, want validation", err)
	}

	login, err := e.authSvc.Login(ctx, "ARTIST@example.com", strongPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := auth.ParseAccessToken(e.authSvc.jwt, login.AccessToken)
	if err != nil || claims.UserID != sess.User.ID || !claims.HasRole(domain.RoleArtist) {
		t.Errorf("claims = %+v, %v", claims, err)
	}
	if _, err := e.authSvc.Login(ctx, "artist@example.com", "nope"); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := e.authSvc.Login(ctx, "ghost@example.com", strongPassword); !errors.Is(err, ErrInvalidCreds) {
		t.Errorf("unknown email: err = %v", err)
	}

	refreshed, err := e.authSvc.Refresh(ctx, login.RefreshToken)
	if err != nil || refreshed.AccessToken == "" {
		t.Errorf("Refresh = %+v, %v", refreshed, err)
	}
	if _, err := e.authSvc.Refresh(ctx, login.AccessToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("refresh with access token: err = %v", err)
	}
}

var resetTokenRe = regexp.MustCompile(`token=([0-9a-f]{64})`)

func TestPasswordResetFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.authSvc.Register(ctx, RegisterInput{Email: "fan@example.com", Username: "fan", Password: strongPassword}); err != nil {
		t.Fatal(err)
	}
	if err := e.authSvc.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Errorf("unknown email: %v", err)
	}
	if err := e.authSvc.ForgotPassword(ctx, "fan@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	e.notif.Wait()

	var token string
	for _, m := range e.mail.Sent() {
		if match := resetTokenRe.FindStringSubmatch(m.HTML); match != nil {
			token = match[1]
		}
	}
	if token == "" {
		t.Fatal("reset email with token not sent")
	}
	if err := e.authSvc.VerifyResetToken(ctx, token); err != nil {
		t.Fatalf("VerifyResetToken: %v", err)
	}
	if err := e.authSvc.VerifyResetToken(ctx, "deadbeef"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bogus token: err = %v", err)
	}

	const newPassword = "N3w!password"
	if err := e.authSvc.ResetPassword(ctx, token, newPassword); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := e.authSvc.ResetPassword(ctx, token, newPassword); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("token reuse: err = %v, want validation", err)
	}
	if _, err := e.authSvc.Login(ctx, "fan@example.com", newPassword); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.authSvc.Register(ctx, RegisterInput{Email: "fan@example.com", Username: "fan", Password: strongPassword}); err != nil {
		t.Fatal(err)
	}
	if err := e.authSvc.ForgotPassword(ctx, "fan@example.com"); err != nil {
		t.Fatal(err)
	}
	e.notif.Wait()
	var token string
	for _, m := range e.mail.Sent() {
		if match := resetTokenRe.FindStringSubmatch(m.HTML); match != nil {
			token = match[1]
		}
	}
	e.clock.Advance(time.Hour + time.Second)
	if err := e.authSvc.VerifyResetToken(ctx, token); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expired token: err = %v, want validation", err)
	}
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess, err := e.authSvc.Register(ctx, RegisterInput{Email: "fan@example.com", Username: "fan", Password: strongPassword})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.authSvc.ChangePassword(ctx, sess.User.ID, "wrong", "N3w!password"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("wrong current: err = %v", err)
	}
	if err := e.authSvc.ChangePassword(ctx, sess.User.ID, strongPassword, strongPassword); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("same password: err = %v", err)
	}
	if err := e.authSvc.ChangePassword(ctx, sess.User.ID, strongPassword, "N3w!password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := e.authSvc.Login(ctx, "fan@example.com", "N3w!password"); err != nil {
		t.Errorf("login after change: %v", err)
	}
}
