// Package devserver is an in-memory implementation of the expense backend's
// HTTP API, for local development and integration tests.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
)

const emailKey = "email"

// Server serves the expense API from a gateway.Demo store.
type Server struct {
	store    *gateway.Demo
	currency string
	logger   *log.Logger

	mu     sync.RWMutex
	users  map[string][]byte
	tokens map[string]string
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithUser registers an account up front.
func WithUser(email, password string) Option {
	return func(s *Server) {
		if err := s.addUser(email, password); err != nil {
			s.logger.Error("seeding user", "email", email, "error", err)
		}
	}
}

func New(store *gateway.Demo, opts ...Option) *Server {
	s := &Server{
		store:    store,
		currency: store.Currency(),
		logger:   log.Default(),
		users:    make(map[string][]byte),
		tokens:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/", s.root)
	r.GET("/health", s.healthCheck)

	auth := r.Group("/authentication")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)

	api := r.Group("/", s.requireToken())
	api.GET("/expenses_summary", s.getSummary)
	api.GET("/expenses/detail", s.getDetail)
	api.POST("/expenses", s.createExpense)
	api.DELETE("/expenses/:id", s.deleteExpense)
	api.GET("/expenses_category", s.getCategories)
	api.GET("/goals", s.getGoals)
	api.POST("/goals", s.createGoal)
	api.PATCH("/goals/:id", s.updateGoal)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		s.mu.RLock()
		email, ok := s.tokens[token]
		s.mu.RUnlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(emailKey, email)
		c.Next()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "ahorrista-devserver"})
}

func (s *Server) healthCheck(c *gin.Context) {
	s.mu.RLock()
	users := len(s.users)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"users":  users,
	})
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.addUser(req.Email, req.Passwd); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	s.respondWithToken(c, req.Email)
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := normaliseEmail(req.Email)
	s.mu.RLock()
	hash, ok := s.users[email]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Passwd)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	s.respondWithToken(c, email)
}

func (s *Server) respondWithToken(c *gin.Context, email string) {
	token, err := newToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	email = normaliseEmail(email)
	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()

	c.JSON(http.StatusOK, authResponse{
		Status:  http.StatusOK,
		Message: "success",
		Data:    authData{Token: token, Email: email},
	})
}

func (s *Server) addUser(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	email = normaliseEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return errors.New("email already registered")
	}
	s.users[email] = hash
	return nil
}

func (s *Server) getSummary(c *gin.Context) {
	period, ok := periodFromQuery(c)
	if !ok {
		return
	}

	entries, err := s.store.GetSummary(c.Request.Context(), period.Year(), period.Month())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]summaryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newSummaryResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getDetail(c *gin.Context) {
	period, ok := periodFromQuery(c)
	if !ok {
		return
	}

	categoryID, err := strconv.ParseInt(c.Query("categoryId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categoryId must be an integer"})
		return
	}

	entries, err := s.store.GetDetail(c.Request.Context(), period.Year(), period.Month(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newTransactionResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = d
	}

	t, err := s.store.CreateTransaction(c.Request.Context(), gateway.NewTransaction{
		Amount:      gateway.DecimalToMoney(req.Amount, s.currency),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(t))
}

func (s *Server) deleteExpense(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.store.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getCategories(c *gin.Context) {
	cats, err := s.store.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getGoals(c *gin.Context) {
	goals, err := s.store.GetGoals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetAmount == nil || req.Month == nil || req.Year == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetAmount, month and year are required"})
		return
	}

	in := gateway.GoalInput{
		TargetAmount: gateway.DecimalToMoney(*req.TargetAmount, s.currency),
		Year:         *req.Year,
		Month:        *req.Month,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	g, err := s.store.CreateGoal(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGoalResponse(g))
}

func (s *Server) updateGoal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := gateway.GoalPatch{Year: req.Year, Month: req.Month, Description: req.Description}
	if req.TargetAmount != nil {
		patch.TargetAmount = gateway.DecimalToMoney(*req.TargetAmount, s.currency)
	}

	g, err := s.store.UpdateGoal(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGoalResponse(g))
}

func periodFromQuery(c *gin.Context) (month.Cursor, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return month.Cursor{}, false
	}
	m, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
		return month.Cursor{}, false
	}

	period, err := month.New(year, m)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return month.Cursor{}, false
	}
	return period, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var se *gateway.StatusError
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &se):
		c.JSON(se.Code, gin.H{"error": se.Body})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func newToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
