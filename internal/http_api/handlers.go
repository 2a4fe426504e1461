package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lottolabs/sortitio/internal/models"
)

// FormRequest carries partial form-field updates. Empty fields are
// left untouched in the store.
type FormRequest struct {
	Country     string `json:"country"`
	Continent   string `json:"continent"`
	Token       string `json:"token"`
	EntryMethod string `json:"entry_method"`
	EntryPrice  uint64 `json:"entry_price"`
	BurnAmount  uint64 `json:"burn_amount"`
	StakeAmount uint64 `json:"stake_amount"`
}

// BurnRequest is the body for the burn-and-buy intent.
type BurnRequest struct {
	Country    string `json:"country"`
	Continent  string `json:"continent"`
	Token      string `json:"token"`
	BurnAmount uint64 `json:"burn_amount"`
}

// StakeRequest is the body for the stake intent.
type StakeRequest struct {
	Country   string `json:"country"`
	Continent string `json:"continent"`
	Token     string `json:"token"`
	Amount    uint64 `json:"amount"`
}

// UnstakeRequest is the body for the unstake intent. No amount: the
// client only supports full unstake.
type UnstakeRequest struct {
	Country   string `json:"country"`
	Continent string `json:"continent"`
	Token     string `json:"token"`
}

// IntentResponse reports the outcome of an intent together with the
// freshly reconciled snapshot.
type IntentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	State   models.Snapshot `json:"state"`
}

// state is a handler for the /state endpoint.
func (s *HTTPServer) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.client.Snapshot())
}

// setForm merges form fields into the store.
func (s *HTTPServer) setForm(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debugw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}
	s.client.SetForm(models.FormFields{
		Country:     req.Country,
		Continent:   req.Continent,
		Token:       req.Token,
		EntryMethod: req.EntryMethod,
		EntryPrice:  req.EntryPrice,
		BurnAmount:  req.BurnAmount,
		StakeAmount: req.StakeAmount,
	})
	c.JSON(http.StatusOK, s.client.Snapshot())
}

func (s *HTTPServer) initialize(c *gin.Context) {
	s.runIntent(c, "Master initialized", s.client.Initialize(c.Request.Context()))
}

func (s *HTTPServer) createLottery(c *gin.Context) {
	s.runIntent(c, "Lottery created", s.client.CreateLottery(c.Request.Context()))
}

func (s *HTTPServer) buyTicket(c *gin.Context) {
	s.runIntent(c, "Ticket bought", s.client.BuyTicket(c.Request.Context()))
}

func (s *HTTPServer) burnAndBuy(c *gin.Context) {
	var req BurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debugw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}
	err := s.client.BurnAndBuy(c.Request.Context(), req.Country, req.Continent, req.Token, req.BurnAmount)
	s.runIntent(c, "Tokens burned and ticket bought", err)
}

func (s *HTTPServer) stake(c *gin.Context) {
	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debugw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}
	err := s.client.Stake(c.Request.Context(), req.Country, req.Continent, req.Token, req.Amount)
	s.runIntent(c, "Tokens staked", err)
}

func (s *HTTPServer) unstake(c *gin.Context) {
	var req UnstakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debugw("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}
	err := s.client.Unstake(c.Request.Context(), req.Country, req.Continent, req.Token)
	s.runIntent(c, "Tokens unstaked", err)
}

func (s *HTTPServer) pickWinner(c *gin.Context) {
	s.runIntent(c, "Winner picked", s.client.PickWinner(c.Request.Context()))
}

func (s *HTTPServer) claimPrize(c *gin.Context) {
	s.runIntent(c, "Prize claimed", s.client.ClaimPrize(c.Request.Context()))
}

// runIntent writes the shared intent response, mapping the error
// taxonomy onto HTTP statuses.
func (s *HTTPServer) runIntent(c *gin.Context, message string, err error) {
	if err != nil {
		s.logger.Debugw("Intent failed", "error", err)
		c.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   err.Error(),
			"state":   s.client.Snapshot(),
		})
		return
	}
	c.JSON(http.StatusOK, IntentResponse{
		Success: true,
		Message: message,
		State:   s.client.Snapshot(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotEligible):
		return http.StatusConflict
	case errors.Is(err, models.ErrMintResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrSubmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
