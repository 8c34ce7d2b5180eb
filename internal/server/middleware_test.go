package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthRequired(secret), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"userID": currentUserID(ctx)})
	})
	return router
}

func TestAuthRequired(t *testing.T) {
	validToken, _, err := issueToken(testSecret, "user1", "user@example.com", false)
	require.NoError(t, err)

	expiredClaims := &TokenClaims{
		ID:    "user1",
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongSecretToken, _, err := issueToken("other-secret", "user1", "user@example.com", false)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  struct {
			statusCode int
			body       string
		}
	}{
		{
			name:  "missing cookie",
			token: "",
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: 401,
				body:       "Unauthorized",
			},
		},
		{
			name:  "valid token",
			token: validToken,
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: 200,
				body:       "user1",
			},
		},
		{
			name:  "expired token",
			token: expiredToken,
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: 401,
				body:       "expired or invalid",
			},
		},
		{
			name:  "token signed with a different secret",
			token: wrongSecretToken,
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: 401,
				body:       "expired or invalid",
			},
		},
		{
			name:  "garbage token",
			token: "not.a.jwt",
			want: struct {
				statusCode int
				body       string
			}{
				statusCode: 401,
				body:       "expired or invalid",
			},
		},
	}

	router := authTestRouter(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/protected", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookie, Value: tt.token})
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.want.body)
		})
	}
}

func TestIssueTokenClaims(t *testing.T) {
	tests := []struct {
		name       string
		rememberMe bool
		want       struct {
			ttl time.Duration
		}
	}{
		{name: "session token lives one day", rememberMe: false, want: struct{ ttl time.Duration }{ttl: sessionTTL}},
		{name: "remember me extends to thirty days", rememberMe: true, want: struct{ ttl time.Duration }{ttl: rememberTTL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ttl, err := issueToken(testSecret, "user1", "user@example.com", tt.rememberMe)
			require.NoError(t, err)
			assert.Equal(t, tt.want.ttl, ttl)

			claims, err := parseToken(testSecret, token)
			require.NoError(t, err)
			assert.Equal(t, "user1", claims.ID)
			assert.Equal(t, "user@example.com", claims.Email)

			remaining := time.Until(claims.ExpiresAt.Time)
			assert.InDelta(t, tt.want.ttl.Seconds(), remaining.Seconds(), 60)
		})
	}
}

func TestGzipResponseCompress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GzipResponseCompress())
	router.GET("/test", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "Hello, World!"})
	})

	tests := []struct {
		name           string
		acceptEncoding string
		want           struct {
			contentEncoding string
		}
	}{
		{
			name:           "client accepts gzip",
			acceptEncoding: "gzip",
			want: struct {
				contentEncoding string
			}{
				contentEncoding: "gzip",
			},
		},
		{
			name:           "client does not accept gzip",
			acceptEncoding: "",
			want: struct {
				contentEncoding string
			}{
				contentEncoding: "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/test", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want.contentEncoding, w.Header().Get("Content-Encoding"))

			if tt.want.contentEncoding == "gzip" {
				gr, err := gzip.NewReader(w.Body)
				require.NoError(t, err)
				decoded, err := io.ReadAll(gr)
				require.NoError(t, err)
				assert.Contains(t, string(decoded), "Hello, World!")
			} else {
				assert.Contains(t, w.Body.String(), "Hello, World!")
			}
		})
	}
}
