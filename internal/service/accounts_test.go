// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpress/internal/apperr"
	"quillpress/internal/auth"
	"quillpress/internal/models"
	"quillpress/internal/store/memory"
)

func newAccounts(t *testing.T) (*Accounts, *memory.DB) {
	t.Helper()
	db := memory.New()
	tokens := auth.NewTokenManager("test-secret", "quillpress", time.Hour)
	return NewAccounts(db.Users, tokens, auth.NewMemoryRevoker(), "QuillPress"), db
}

func TestAccountsRegisterAndLogin(t *testing.T) {
	a, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := a.Register(ctx, RegisterInput{Name: "Jane", Email: "Jane@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.Equal(t, "jane@example.com", sess.User.Email)

	_, err = a.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = a.Register(ctx, RegisterInput{Name: "J", Email: "j@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	login, err := a.Login(ctx, LoginInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	_, err = a.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-pass"})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = a.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	_, err = a.Login(ctx, LoginInput{Email: "", Password: ""})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAccountsAuthenticateAndLogout(t *testing.T) {
	a, db := newAccounts(t)
	ctx := context.Background()

	sess, err := a.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	p, claims, err := a.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, p.ID)
	assert.Equal(t, models.RoleUser, p.Role)

	// Role changes apply to tokens already issued.
	u, _ := db.Users.FindByID(ctx, p.ID)
	u.Role = models.RoleAdmin
	_, err = db.Users.Update(ctx, u)
	require.NoError(t, err)
	p, _, err = a.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)

	require.NoError(t, a.Logout(ctx, claims))
	_, _, err = a.Authenticate(ctx, sess.Token)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, _, err = a.Authenticate(ctx, "garbage")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAccountsUpdateMe(t *testing.T) {
	a, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := a.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	p := sess.User.Principal()

	updated, err := a.UpdateMe(ctx, p, UserInput{Name: ptr("Jane Doe"), AvatarRef: ptr("avatars/jane.png")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	require.NotNil(t, updated.AvatarRef)

	_, err = a.UpdateMe(ctx, p, UserInput{Role: ptr("admin")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	me, err := a.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, me.Role)

	_, err = a.Me(ctx, nil)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAccountsTOTP(t *testing.T) {
	a, _ := newAccounts(t)
	ctx := context.Background()

	sess, err := a.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	p := sess.User.Principal()

	_, err = a.EnableTOTP(ctx, p, "123456")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	enr, err := a.SetupTOTP(ctx, p)
	require.NoError(t, err)

	_, err = a.EnableTOTP(ctx, p, "not-a-code")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	u, err := a.EnableTOTP(ctx, p, code)
	require.NoError(t, err)
	assert.True(t, u.TOTPEnabled)

	_, err = a.Login(ctx, LoginInput{Email: "jane@example.com", Password: "secret1"})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err), "code is required once enabled")

	code, err = totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	_, err = a.Login(ctx, LoginInput{Email: "jane@example.com", Password: "secret1", Code: code})
	assert.NoError(t, err)

	_, err = a.SetupTOTP(ctx, p)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
