package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/model"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
		hint *uint
		want *uint
	}{
		{
			name: "super admin is unrestricted",
			p:    Principal{ID: 1, Role: model.RoleSuperAdmin},
			want: nil,
		},
		{
			name: "super admin ignores hint",
			p:    Principal{ID: 1, Role: model.RoleSuperAdmin},
			hint: uintPtr(3),
			want: nil,
		},
		{
			name: "bound principal resolves to its tenant",
			p:    Principal{ID: 2, Role: model.RoleInstructor, TenantID: uintPtr(1)},
			want: uintPtr(1),
		},
		{
			name: "tenant binding wins over hint",
			p:    Principal{ID: 2, Role: model.RoleInstructor, TenantID: uintPtr(1)},
			hint: uintPtr(2),
			want: uintPtr(1),
		},
		{
			name: "unbound principal falls back to hint",
			p:    Principal{ID: 3, Role: model.RoleStudent},
			hint: uintPtr(3),
			want: uintPtr(3),
		},
		{
			// Documented fallback: no binding and no hint degrades to
			// unrestricted access, not to deny-all.
			name: "unbound principal without hint is unrestricted",
			p:    Principal{ID: 3, Role: model.RoleStudent},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.p, tt.hint)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	p := Principal{ID: 2, Role: model.RoleInstructor, TenantID: uintPtr(7)}
	hint := uintPtr(9)

	first := Resolve(p, hint)
	second := Resolve(p, hint)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestHintFromHeader(t *testing.T) {
	e := echo.New()

	newCtx := func(value string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if value != "" {
			req.Header.Set(HintHeader, value)
		}
		return e.NewContext(req, httptest.NewRecorder())
	}

	t.Run("valid hint", func(t *testing.T) {
		hint := HintFromHeader(newCtx("42"))
		require.NotNil(t, hint)
		assert.Equal(t, uint(42), *hint)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Nil(t, HintFromHeader(newCtx("")))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Nil(t, HintFromHeader(newCtx("not-a-number")))
	})
}
