package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/middleware"
	"github.com/qs-lzh/movie-review/internal/service/domain"
)

type SignupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilePicture"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
}

type AddToWatchlistRequest struct {
	MovieID flexID `json:"movieId"`
}

func (h *Handler) HandleSignup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.app.AuthService.Signup(c.Request.Context(), domain.SignupInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.failErr(c, err, "Internal Server Error. Please try again later.")
		return
	}

	h.app.Logger.Info("user signed up", zap.Uint("user_id", user.ID))
	respond(c, http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Account created successfully 🎉 Welcome, %s!", user.Username),
		"user":    user.Public(),
	})
}

func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.app.AuthService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.failErr(c, err, "Internal Server Error. Please try again later.")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, result.Token, int(h.app.JWT.TTL().Seconds()), "/", "", h.app.Config.IsProduction(), true)
	respond(c, http.StatusOK, gin.H{
		"message": "User logged in successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *Handler) HandleGetProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	user, reviews, err := h.app.UserService.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err, "Internal Server Error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"user":    user,
		"reviews": reviews,
	})
}

func (h *Handler) HandleUpdateProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.app.UserWorkflow.UpdateProfile(c.Request.Context(), id, domain.UpdateProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.failErr(c, err, "Internal Server Error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *Handler) HandleGetWatchlist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	entries, err := h.app.WatchlistService.GetWatchlist(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err, "Internal Server Error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"count":     len(entries),
		"watchlist": entries,
	})
}

func (h *Handler) HandleAddToWatchlist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	var req AddToWatchlistRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, movie, err := h.app.WatchlistService.AddToWatchlist(c.Request.Context(), id, uint(req.MovieID))
	if err != nil {
		h.failErr(c, err, "Internal Server Error")
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"message":       fmt.Sprintf("%s added to watchlist.", movie.Title),
		"watchlistItem": entry,
	})
}

func (h *Handler) HandleRemoveFromWatchlist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	movieID, ok := paramID(c, "movieId")
	if !ok {
		fail(c, http.StatusNotFound, "Movie not found in watchlist.")
		return
	}

	title, err := h.app.WatchlistService.RemoveFromWatchlist(c.Request.Context(), id, movieID)
	if err != nil {
		h.failErr(c, err, "Internal Server Error")
		return
	}

	message := "Movie removed from watchlist."
	if title != "" {
		message = fmt.Sprintf("%s removed from watchlist.", title)
	}
	respond(c, http.StatusOK, gin.H{"message": message})
}
