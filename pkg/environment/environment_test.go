package environment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paymybuddy/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{"production", environment.Production},
		{"PROD", environment.Production},
		{" dev ", environment.Development},
		{"local", environment.Development},
		{"stage", environment.Staging},
		{"qa", environment.Environment("qa")},
		{"", environment.Environment("")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, environment.Parse(tt.in))
		})
	}
}

func TestSecure(t *testing.T) {
	t.Parallel()

	assert.True(t, environment.Production.Secure())
	assert.True(t, environment.Staging.Secure())
	assert.False(t, environment.Development.Secure())
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := environment.WithContext(context.Background(), environment.Production)
	assert.Equal(t, environment.Production, environment.FromContext(ctx))
	assert.True(t, environment.IsProduction(ctx))
	assert.False(t, environment.IsDevelopment(ctx))

	assert.Empty(t, environment.FromContext(context.Background()))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen environment.Environment
	h := environment.Middleware(environment.Staging)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = environment.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, environment.Staging, seen)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := environment.LoggerExtractor()

	attr, ok := extract(environment.WithContext(context.Background(), environment.Development))
	assert.True(t, ok)
	assert.Equal(t, "env", attr.Key)
	assert.Equal(t, "development", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
