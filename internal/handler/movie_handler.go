package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/middleware"
	"github.com/qs-lzh/movie-review/internal/model"
	"github.com/qs-lzh/movie-review/internal/repository"
	"github.com/qs-lzh/movie-review/internal/service/domain"
)

type CreateMovieRequest struct {
	Title       string     `json:"title"`
	Genre       stringList `json:"genre"`
	ReleaseYear int        `json:"releaseYear"`
	Director    string     `json:"director"`
	Cast        stringList `json:"cast"`
	Synopsis    string     `json:"synopsis"`
	PosterURL   string     `json:"posterUrl"`
}

type AddReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

func (h *Handler) HandleListMovies(c *gin.Context) {
	query := domain.ListMoviesQuery{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
		Filter: repository.MovieFilter{
			Genre: c.Query("genre"),
			Year:  queryInt(c, "year"),
			Title: c.Query("title"),
		},
	}

	page, err := h.app.MovieWorkflow.ListMovies(c.Request.Context(), query)
	if err != nil {
		h.failErr(c, err, "Error fetching movies")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"count":      len(page.Movies),
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"movies":     page.Movies,
	})
}

func (h *Handler) HandleGetMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Movie not found")
		return
	}

	detail, err := h.app.MovieWorkflow.GetMovieDetail(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err, "Error fetching movie details")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"movie":   detail.Movie,
		"reviews": detail.Reviews,
	})
}

func (h *Handler) HandleCreateMovie(c *gin.Context) {
	var req CreateMovieRequest
	if !bindJSON(c, &req) {
		return
	}

	movie := &model.Movie{
		Title:       req.Title,
		Genre:       req.Genre,
		ReleaseYear: req.ReleaseYear,
		Director:    req.Director,
		Cast:        req.Cast,
		Synopsis:    req.Synopsis,
		PosterURL:   req.PosterURL,
	}
	if err := h.app.MovieWorkflow.CreateMovie(c.Request.Context(), movie); err != nil {
		h.failErr(c, err, "Error creating movie")
		return
	}

	h.app.Logger.Info("movie created", zap.Uint("movie_id", movie.ID), zap.String("title", movie.Title))
	respond(c, http.StatusCreated, gin.H{
		"message": "Movie created successfully",
		"movie":   movie,
	})
}

func (h *Handler) HandleListMovieReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Movie not found")
		return
	}

	movie, reviews, err := h.app.MovieService.ListMovieReviews(c.Request.Context(), id)
	if err != nil {
		h.failErr(c, err, "Error fetching movie reviews")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"movie":   movie.Title,
		"count":   len(reviews),
		"reviews": reviews,
	})
}

func (h *Handler) HandleAddReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, http.StatusNotFound, "Movie not found")
		return
	}
	var req AddReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	review, movie, err := h.app.ReviewWorkflow.AddReview(c.Request.Context(), domain.AddReviewInput{
		MovieID:    id,
		UserID:     claims.UserID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		h.failErr(c, err, "Error adding movie review")
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"message":              "Review added successfully",
		"review":               review,
		"updatedAverageRating": movie.AverageRating,
	})
}
