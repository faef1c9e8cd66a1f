package http

import (
	"net/http"
	"time"

	"solvibe/internal/dto"
	obsmw "solvibe/internal/observability/middleware"
	"solvibe/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	auth service.AuthService,
	tokens service.TokenService,
	users service.UserService,
	posts service.PostService,
	memberships service.MembershipService,
	votes service.VoteService,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		// Challenge issuance and verification are the brute-force surface.
		r.Use(httprate.LimitByIP(30, 1*time.Minute))

		r.Post("/check-wallet", func(w http.ResponseWriter, r *http.Request) {
			var req dto.CheckWalletRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			res, err := auth.CheckWallet(r.Context(), req.WalletAddress)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
			var req dto.RegisterRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			user, err := auth.Register(r.Context(), req)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			// Registration does not authenticate: hand back a message to
			// sign so the client can complete the challenge flow.
			res, err := auth.RequestChallenge(r.Context(), user.WalletAddress)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, res)
		})

		r.Post("/request-signature", func(w http.ResponseWriter, r *http.Request) {
			var req dto.ChallengeRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			res, err := auth.RequestChallenge(r.Context(), req.WalletAddress)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/verify", func(w http.ResponseWriter, r *http.Request) {
			var req dto.VerifyRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			res, err := auth.Verify(r.Context(), req, clientIP(r), userAgent(r))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	r.Get("/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		user, err := users.GetByID(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	})

	r.Route("/v1/posts", func(r chi.Router) {
		r.With(RequireIdentity(tokens)).Post("/", func(w http.ResponseWriter, r *http.Request) {
			caller, _ := IdentityFrom(r.Context())
			var req dto.CreatePostRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			post, err := posts.Create(r.Context(), *caller, req)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, post)
		})

		r.With(OptionalIdentity(tokens)).Get("/", func(w http.ResponseWriter, r *http.Request) {
			var requesterID *uuid.UUID
			if caller, ok := IdentityFrom(r.Context()); ok {
				requesterID = &caller.UserID
			}
			list, err := posts.List(r.Context(), requesterID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})

		r.With(OptionalIdentity(tokens)).Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				http.Error(w, "invalid post id", http.StatusBadRequest)
				return
			}
			var requesterID *uuid.UUID
			if caller, ok := IdentityFrom(r.Context()); ok {
				requesterID = &caller.UserID
			}
			post, err := posts.Get(r.Context(), id, requesterID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, post)
		})
	})

	r.With(RequireIdentity(tokens)).Post("/v1/memberships/subscribe", func(w http.ResponseWriter, r *http.Request) {
		caller, _ := IdentityFrom(r.Context())
		var req dto.SubscribeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		creatorID, err := uuid.Parse(req.CreatorUserID)
		if err != nil {
			http.Error(w, "invalid creatorUserId", http.StatusBadRequest)
			return
		}
		edge, err := memberships.Subscribe(r.Context(), caller.UserID, creatorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, edge)
	})

	r.Route("/v1/votes", func(r chi.Router) {
		r.With(RequireIdentity(tokens)).Post("/", func(w http.ResponseWriter, r *http.Request) {
			caller, _ := IdentityFrom(r.Context())
			var req dto.CastVoteRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			postID, err := uuid.Parse(req.PostID)
			if err != nil {
				http.Error(w, "invalid postId", http.StatusBadRequest)
				return
			}
			res, err := votes.Cast(r.Context(), postID, caller.UserID, req.Type)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Get("/post/{postId}", func(w http.ResponseWriter, r *http.Request) {
			postID, err := uuid.Parse(chi.URLParam(r, "postId"))
			if err != nil {
				http.Error(w, "invalid postId", http.StatusBadRequest)
				return
			}
			list, err := votes.ForPost(r.Context(), postID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})

		r.With(RequireIdentity(tokens)).Get("/me", func(w http.ResponseWriter, r *http.Request) {
			caller, _ := IdentityFrom(r.Context())
			list, err := votes.ByVoter(r.Context(), caller.UserID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})
	})

	return r
}
