package utils

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ViBaTo/panel-control-tm/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenMakerKeyLength(t *testing.T) {
	_, err := NewTokenMaker("short")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	access, refresh, err := m.GenerateTokens("sess-1", "user-1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = m.ValidateToken(refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenKind)

	_, err = m.ValidateToken(refresh, RefreshToken)
	assert.NoError(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	token, err := m.generate("sess-1", "user-1", AccessToken, -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenFromOtherKeyRejected(t *testing.T) {
	m1, _ := NewTokenMaker(testKey)
	m2, _ := NewTokenMaker("fedcba9876543210fedcba9876543210")

	token, err := m1.GenerateAccessToken("sess-1", "user-1")
	require.NoError(t, err)
	_, err = m2.ValidateToken(token, AccessToken)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secreto1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secreto1"))
	assert.False(t, CheckPassword(hash, "secreto2"))
	assert.False(t, CheckPassword("", "secreto1"))
}

func TestValidateSignUp(t *testing.T) {
	valid := SignUpForm{
		Email:           "ana@clinica.es",
		Password:        "secreto",
		ConfirmPassword: "secreto",
		Nombre:          "Ana",
		Apellidos:       "García",
	}

	tests := []struct {
		name   string
		mutate func(f *SignUpForm)
		want   error
	}{
		{"valid", func(f *SignUpForm) {}, nil},
		{"mismatch wins over short", func(f *SignUpForm) { f.Password = "abc"; f.ConfirmPassword = "abd" }, ErrPasswordMismatch},
		{"short password", func(f *SignUpForm) { f.Password = "abc"; f.ConfirmPassword = "abc" }, ErrPasswordTooShort},
		{"blank surname", func(f *SignUpForm) { f.Apellidos = "   " }, ErrNameRequired},
		{"bad email", func(f *SignUpForm) { f.Email = "ana" }, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			err := ValidateSignUp(form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, ValidatePasswordReset("012345", "nuevaclave"))
	assert.Equal(t, ErrInvalidResetCode, ValidatePasswordReset("12ab56", "nuevaclave"))
	assert.Equal(t, ErrInvalidResetCode, ValidatePasswordReset("", "nuevaclave"))
	assert.Equal(t, ErrPasswordTooShort, ValidatePasswordReset("012345", "corta"))
}

func TestGenerateResetCode(t *testing.T) {
	code, err := GenerateResetCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestResetCodesExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	codes := NewResetCodes(c)
	ctx := context.Background()

	require.NoError(t, codes.Set(ctx, "ana@clinica.es", "123456"))
	got, err := codes.Get(ctx, "ana@clinica.es")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "123456", *got)

	mr.FastForward(ResetCodeExpiry + time.Second)
	got, err = codes.Get(ctx, "ana@clinica.es")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResetEmailContainsCodeAndLink(t *testing.T) {
	link := ResetLink("https://panel.example.com", "ana+1@clinica.es")
	assert.Equal(t, "https://panel.example.com/reset-password?email=ana%2B1%40clinica.es", link)

	m, err := BuildResetMessage("no-reply@clinica.es", "ana+1@clinica.es", "654321", link)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "654321")
	assert.Equal(t, []string{"ana+1@clinica.es"}, m.GetHeader("To"))
}

func TestSMTPMailerSends(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, User: "no-reply@clinica.es"}, "http://localhost:8930")
	var sent []*gomail.Message
	mailer.send = func(m ...*gomail.Message) error {
		sent = append(sent, m...)
		return nil
	}

	require.NoError(t, mailer.SendResetCodeEmail("ana@clinica.es", "111222"))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"no-reply@clinica.es"}, sent[0].GetHeader("From"))
}
