package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/corpus"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/security"
	timeadapter "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
	usecasemocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/usecase"
)

var now = time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)

type fixture struct {
	router    *gin.Engine
	users     *usecasemocks.MockUserUseCase
	envelopes *usecasemocks.MockEnvelopeUseCase
	issuer    *security.JWTIssuer
}

func newFixture(t *testing.T, requireToken bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := coremocks.NewPermissiveLogger()
	tp := timeadapter.NewFixedTimeProvider(now)

	books, err := corpus.Default(rand.NewPCG(1, 2))
	require.NoError(t, err)

	issuer, err := security.NewJWTIssuer("test-secret", time.Hour, tp)
	require.NoError(t, err)

	f := &fixture{
		router:    gin.New(),
		users:     usecasemocks.NewMockUserUseCase(t),
		envelopes: usecasemocks.NewMockEnvelopeUseCase(t),
		issuer:    issuer,
	}

	routes.SetupMiddlewares(f.router, logger, sport.TokenIssuer(issuer), nil)
	routes.SetupRoutes(f.router, routes.Handlers{
		Users:     handler.NewUserHandler(f.users, logger),
		Envelopes: handler.NewEnvelopeHandler(f.envelopes, logger),
		Cipher:    handler.NewCipherHandler(books, logger),
		Health:    handler.NewHealthHandler(nil, tp),
	}, routes.Options{RequireToken: requireToken})

	return f
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func pendingEnvelope() *entity.Envelope {
	return &entity.Envelope{
		ID:             7,
		SenderID:       1,
		SenderNickname: "alice",
		AmountInCents:  1000,
		TotalCount:     2,
		ClaimedCount:   1,
		BookName:       "红楼梦",
		Excerpt:        "满纸荒唐言，一把辛酸泪。",
		Answer:         "满纸荒唐",
		Cipher:         "-- .- -. / --.. .... ..",
		Status:         entity.EnvelopePending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(entity.EnvelopeLifetime),
		Claims: []*entity.Claim{
			{ID: 3, EnvelopeID: 7, ClaimerID: 2, ClaimerNickname: "bob", AmountInCents: 420, CreatedAt: now},
		},
	}
}

func TestLogin(t *testing.T) {
	t.Run("should register and return the starting balance", func(t *testing.T) {
		f := newFixture(t, false)
		user, err := entity.NewUser("alice", "pw", timeadapter.NewFixedTimeProvider(now))
		require.NoError(t, err)
		user.ID = 1
		user.SetBalance(10000, timeadapter.NewFixedTimeProvider(now))

		f.users.On("Login", mock.Anything, "alice", "pw").
			Return(&usecase.LoginResult{User: user, Created: true}, nil).Once()

		w := f.do(http.MethodPost, "/api/users", `{"nickname":"alice","password":"pw"}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"balance":100.00`)
		assert.Contains(t, w.Body.String(), `"created":true`)
		assert.NotContains(t, w.Body.String(), `"token"`)
	})

	t.Run("should reject a missing password", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/api/users", `{"nickname":"alice"}`, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerr.CodeInvalidRequest, decodeError(t, w).Code)
	})

	t.Run("should map bad credentials to 401", func(t *testing.T) {
		f := newFixture(t, true)
		f.users.On("Login", mock.Anything, "alice", "nope").
			Return(nil, domainerr.ErrInvalidCredentials).Once()

		w := f.do(http.MethodPost, "/api/users", `{"nickname":"alice","password":"nope"}`, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, domainerr.CodeInvalidCredentials, decodeError(t, w).Code)
	})
}

func TestWalletAndRecharge(t *testing.T) {
	t.Run("should return the wallet", func(t *testing.T) {
		f := newFixture(t, false)
		f.users.On("GetWallet", mock.Anything, uint64(4)).
			Return(&usecase.Wallet{UserID: 4, Balance: 1234}, nil).Once()

		w := f.do(http.MethodGet, "/api/users/4/wallet", "", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":4,"balance":12.34}`, w.Body.String())
	})

	t.Run("should reject a non numeric id", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodGet, "/api/users/abc/wallet", "", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerr.CodeInvalidUserID, decodeError(t, w).Code)
	})

	t.Run("should map unknown users to 404", func(t *testing.T) {
		f := newFixture(t, false)
		f.users.On("GetWallet", mock.Anything, uint64(9)).Return(nil, domainerr.ErrUserNotFound).Once()

		w := f.do(http.MethodGet, "/api/users/9/wallet", "", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should recharge string amounts in cents", func(t *testing.T) {
		f := newFixture(t, false)
		tx := &entity.Transaction{ID: 1, UserID: 4, Reference: "r", Kind: entity.KindRecharge, AmountInCents: 1050, BalanceAfter: 2050, CreatedAt: now}
		f.users.On("Recharge", mock.Anything, uint64(4), int64(1050)).
			Return(&usecase.LedgerResult{Transaction: tx, Balance: 2050}, nil).Once()

		w := f.do(http.MethodPost, "/api/users/4/recharge", `{"amount":"10.50"}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"balance":20.50`)
	})

	t.Run("should reject sub cent amounts before the use case", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/api/users/4/recharge", `{"amount":1.005}`, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerr.CodeInvalidAmount, decodeError(t, w).Code)
	})

	t.Run("should hide internal errors", func(t *testing.T) {
		f := newFixture(t, false)
		f.users.On("Recharge", mock.Anything, uint64(4), int64(100)).
			Return(nil, errors.New("disk on fire")).Once()

		w := f.do(http.MethodPost, "/api/users/4/recharge", `{"amount":1}`, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeError(t, w).Message)
	})
}

func TestTokenPolicy(t *testing.T) {
	t.Run("should require a token on mutating routes", func(t *testing.T) {
		f := newFixture(t, true)

		w := f.do(http.MethodPost, "/api/users/4/recharge", `{"amount":1}`, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, domainerr.CodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("should reject a token for another user", func(t *testing.T) {
		f := newFixture(t, true)
		token, _, err := f.issuer.Issue(5, "eve")
		require.NoError(t, err)

		w := f.do(http.MethodPost, "/api/users/4/recharge", `{"amount":1}`, token)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, domainerr.CodeForbidden, decodeError(t, w).Code)
	})

	t.Run("should reject a garbage token even on reads", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodGet, "/api/envelopes", "", "not-a-jwt")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should accept the owner's token", func(t *testing.T) {
		f := newFixture(t, true)
		token, _, err := f.issuer.Issue(2, "bob")
		require.NoError(t, err)

		f.envelopes.On("Claim", mock.Anything, usecase.ClaimRequest{EnvelopeID: 7, UserID: 2, Answer: "满纸荒唐"}).
			Return(&usecase.ClaimResult{
				Claim:    &entity.Claim{AmountInCents: 420},
				Envelope: pendingEnvelope(),
				Balance:  10420,
			}, nil).Once()

		w := f.do(http.MethodPost, "/api/envelopes/7/claim", `{"userId":2,"answer":"满纸荒唐"}`, token)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCreateEnvelope(t *testing.T) {
	t.Run("should default to a single share", func(t *testing.T) {
		f := newFixture(t, false)
		env := pendingEnvelope()
		env.TotalCount, env.ClaimedCount, env.Claims = 1, 0, nil

		f.envelopes.On("Create", mock.Anything, usecase.CreateEnvelopeRequest{
			SenderID: 1, AmountInCents: 1000, Count: 1,
		}).Return(&usecase.CreatedEnvelope{
			EnvelopeView: usecase.EnvelopeView{Envelope: env, Timeline: cipher.CipherToTimeline(env.Cipher)},
			Phonetic:     []string{"man", "zhi", "huang", "tang"},
			Balance:      9000,
		}, nil).Once()

		w := f.do(http.MethodPost, "/api/envelopes", `{"senderId":1,"amount":10}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "满纸荒唐", resp["answer"])
		assert.Equal(t, env.Cipher, resp["morseCode"])
		assert.Contains(t, w.Body.String(), `"balance":90.00`)
	})

	t.Run("should pass validation failures through as 400", func(t *testing.T) {
		f := newFixture(t, false)
		f.envelopes.On("Create", mock.Anything, usecase.CreateEnvelopeRequest{
			SenderID: 1, AmountInCents: 50, Count: 100,
		}).Return(nil, domainerr.ErrAmountBelowMinimum).Once()

		w := f.do(http.MethodPost, "/api/envelopes", `{"senderId":1,"amount":0.5,"count":100}`, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerr.CodeAmountBelowMinimum, decodeError(t, w).Code)
	})

	t.Run("should require a sender", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/api/envelopes", `{"amount":10}`, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAndListEnvelopes(t *testing.T) {
	t.Run("should hide the amount and answer while pending", func(t *testing.T) {
		f := newFixture(t, false)
		env := pendingEnvelope()
		f.envelopes.On("Get", mock.Anything, uint64(7)).
			Return(&usecase.EnvelopeView{Envelope: env, Timeline: cipher.CipherToTimeline(env.Cipher)}, nil).Once()

		w := f.do(http.MethodGet, "/api/envelopes/7", "", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotContains(t, resp, "amount")
		assert.NotContains(t, resp, "answer")
		assert.NotContains(t, w.Body.String(), "满纸荒唐\"")
		assert.Equal(t, "pending", resp["status"])
	})

	t.Run("should map a missing envelope to 404", func(t *testing.T) {
		f := newFixture(t, false)
		f.envelopes.On("Get", mock.Anything, uint64(99)).Return(nil, domainerr.ErrEnvelopeNotFound).Once()

		w := f.do(http.MethodGet, "/api/envelopes/99", "", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, domainerr.CodeEnvelopeNotFound, decodeError(t, w).Code)
	})

	t.Run("should mask totals of unsettled envelopes in the list", func(t *testing.T) {
		f := newFixture(t, false)
		settled := pendingEnvelope()
		settled.ID, settled.Status, settled.ClaimedCount = 8, entity.EnvelopeClaimed, 2
		f.envelopes.On("List", mock.Anything).Return([]*entity.Envelope{settled, pendingEnvelope()}, nil).Once()

		w := f.do(http.MethodGet, "/api/envelopes", "", "")

		require.Equal(t, http.StatusOK, w.Code)
		var items []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 2)
		assert.Equal(t, 10.0, items[0]["amount"])
		assert.Equal(t, dto.HiddenAmount, items[1]["amount"])
	})
}

func TestClaimEnvelope(t *testing.T) {
	t.Run("should congratulate the claimer", func(t *testing.T) {
		f := newFixture(t, false)
		f.envelopes.On("Claim", mock.Anything, usecase.ClaimRequest{EnvelopeID: 7, UserID: 2, Answer: " 满纸荒唐 "}).
			Return(&usecase.ClaimResult{
				Claim:    &entity.Claim{AmountInCents: 420},
				Envelope: pendingEnvelope(),
				Balance:  10420,
			}, nil).Once()

		w := f.do(http.MethodPost, "/api/envelopes/7/claim", `{"userId":2,"answer":" 满纸荒唐 "}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ClaimResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "恭喜！成功领取 ¥4.20 红包", resp.Message)
		assert.Equal(t, 1, resp.ClaimedCount)
	})

	t.Run("should report rejections as 400 with their code", func(t *testing.T) {
		testCases := []struct {
			name string
			err  error
			code int
		}{
			{"wrong answer", domainerr.ErrWrongAnswer, domainerr.CodeWrongAnswer},
			{"self claim", domainerr.ErrSelfClaim, domainerr.CodeSelfClaim},
			{"duplicate", domainerr.ErrAlreadyClaimed, domainerr.CodeAlreadyClaimed},
			{"fully claimed", domainerr.ErrEnvelopeFullyClaimed, domainerr.CodeEnvelopeFullyClaimed},
			{"expired", domainerr.ErrEnvelopeExpired, domainerr.CodeEnvelopeExpired},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t, false)
				f.envelopes.On("Claim", mock.Anything, mock.Anything).
					Return(nil, domainerr.NewClaimError(7, 2, tc.name, tc.err)).Once()

				w := f.do(http.MethodPost, "/api/envelopes/7/claim", `{"userId":2,"answer":"x"}`, "")

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, tc.code, decodeError(t, w).Code)
			})
		}
	})

	t.Run("should map a lost race to 409", func(t *testing.T) {
		f := newFixture(t, false)
		f.envelopes.On("Claim", mock.Anything, mock.Anything).Return(nil, domainerr.ErrConcurrentUpdate).Once()

		w := f.do(http.MethodPost, "/api/envelopes/7/claim", `{"userId":2,"answer":"x"}`, "")

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCipherRoutes(t *testing.T) {
	t.Run("should list the corpus", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodGet, "/api/books", "", "")

		require.Equal(t, http.StatusOK, w.Code)
		var books []dto.BookDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
		require.NotEmpty(t, books)
		assert.Equal(t, "红楼梦", books[0].Name)
	})

	t.Run("should decode morse into pinyin", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/api/cipher/decode", `{"morseCode":"-- .- -. / --.. .... .."}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.DecodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"man", "zhi"}, resp.Pinyin)
	})

	t.Run("should reject foreign characters", func(t *testing.T) {
		f := newFixture(t, false)

		w := f.do(http.MethodPost, "/api/cipher/decode", `{"morseCode":"..x"}`, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerr.CodeInvalidCipher, decodeError(t, w).Code)
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/api/health", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
