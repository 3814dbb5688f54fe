// Package http 期权金库的 HTTP 接入层。
package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/option/application"
	"github.com/wyfcoding/optionvault/internal/option/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// OptionHandler 处理发行生命周期与查询相关的 HTTP 请求
type OptionHandler struct {
	optionService *application.OptionService
}

func NewOptionHandler(optionService *application.OptionService) *OptionHandler {
	return &OptionHandler{optionService: optionService}
}

// RegisterRoutes 注册路由
func (h *OptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1")
	{
		api.POST("/options", h.CreateIssuance)
		api.POST("/options/:id/buy", h.BuyOptions)
		api.POST("/options/:id/cancel", h.CancelIssuance)
		api.PUT("/options/:id/premium", h.UpdatePremium)
		api.POST("/options/:id/exercise", h.ExerciseOptions)
		api.POST("/options/:id/reclaim", h.ReclaimCollateral)

		api.GET("/options", h.ListIssuances)
		api.GET("/options/:id", h.GetIssuance)
		api.GET("/counter", h.GetCounter)
		api.GET("/balances/:holder/:id", h.GetBalance)
	}
}

// CreateIssuanceRequest 创建发行请求，金额字段为十进制整数字符串
type CreateIssuanceRequest struct {
	Seller              string `json:"seller" binding:"required"`
	Side                int8   `json:"side"`
	UnderlyingToken     string `json:"underlying_token" binding:"required"`
	UnderlyingTokenID   uint64 `json:"underlying_token_id"`
	Amount              string `json:"amount" binding:"required"`
	StrikeToken         string `json:"strike_token" binding:"required"`
	StrikeTokenID       uint64 `json:"strike_token_id"`
	Strike              string `json:"strike" binding:"required"`
	PremiumToken        string `json:"premium_token" binding:"required"`
	PremiumTokenID      uint64 `json:"premium_token_id"`
	Premium             string `json:"premium" binding:"required"`
	ExerciseWindowStart int64  `json:"exercise_window_start"`
	ExerciseWindowEnd   int64  `json:"exercise_window_end" binding:"required"`
}

// CreateIssuance 创建发行
func (h *OptionHandler) CreateIssuance(c *gin.Context) {
	var req CreateIssuanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid amount", "")
		return
	}
	strike, err := decimal.NewFromString(req.Strike)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid strike", "")
		return
	}
	premium, err := decimal.NewFromString(req.Premium)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid premium", "")
		return
	}

	cmd := application.CreateIssuanceCommand{
		Seller: req.Seller,
		Spec: domain.OptionSpec{
			Side:                domain.Side(req.Side),
			UnderlyingToken:     req.UnderlyingToken,
			UnderlyingTokenID:   req.UnderlyingTokenID,
			Amount:              amount,
			StrikeToken:         req.StrikeToken,
			StrikeTokenID:       req.StrikeTokenID,
			Strike:              strike,
			PremiumToken:        req.PremiumToken,
			PremiumTokenID:      req.PremiumTokenID,
			Premium:             premium,
			ExerciseWindowStart: req.ExerciseWindowStart,
			ExerciseWindowEnd:   req.ExerciseWindowEnd,
		},
	}

	dto, err := h.optionService.Command.Create(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, err, "Failed to create issuance")
		return
	}
	response.Success(c, dto)
}

// TradeRequest 购买 / 行权请求
type TradeRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// BuyOptions 购买期权份额
func (h *OptionHandler) BuyOptions(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid amount", "")
		return
	}

	receipt, err := h.optionService.Command.Buy(c.Request.Context(), application.BuyOptionsCommand{
		IssuanceID: id,
		Buyer:      req.Account,
		Amount:     amount,
	})
	if err != nil {
		h.fail(c, err, "Failed to buy options")
		return
	}
	response.Success(c, receipt)
}

// SellerRequest 仅需卖方身份的请求
type SellerRequest struct {
	Seller string `json:"seller" binding:"required"`
}

// CancelIssuance 撤销未售出的发行
func (h *OptionHandler) CancelIssuance(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	var req SellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err := h.optionService.Command.Cancel(c.Request.Context(), application.CancelIssuanceCommand{
		IssuanceID: id,
		Seller:     req.Seller,
	})
	if err != nil {
		h.fail(c, err, "Failed to cancel issuance")
		return
	}
	response.Success(c, gin.H{"issuance_id": id, "status": "canceled"})
}

// UpdatePremiumRequest 权利金变更请求
type UpdatePremiumRequest struct {
	Seller  string `json:"seller" binding:"required"`
	Premium string `json:"premium" binding:"required"`
}

// UpdatePremium 变更权利金
func (h *OptionHandler) UpdatePremium(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	var req UpdatePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	premium, err := decimal.NewFromString(req.Premium)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid premium", "")
		return
	}

	err = h.optionService.Command.UpdatePremium(c.Request.Context(), application.UpdatePremiumCommand{
		IssuanceID: id,
		Seller:     req.Seller,
		Premium:    premium,
	})
	if err != nil {
		h.fail(c, err, "Failed to update premium")
		return
	}
	response.Success(c, gin.H{"issuance_id": id, "premium": premium.String()})
}

// ExerciseOptions 行权
func (h *OptionHandler) ExerciseOptions(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid amount", "")
		return
	}

	receipt, err := h.optionService.Command.Exercise(c.Request.Context(), application.ExerciseOptionsCommand{
		IssuanceID: id,
		Holder:     req.Account,
		Amount:     amount,
	})
	if err != nil {
		h.fail(c, err, "Failed to exercise options")
		return
	}
	response.Success(c, receipt)
}

// ReclaimCollateral 窗口结束后回收剩余抵押
func (h *OptionHandler) ReclaimCollateral(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	var req SellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	err := h.optionService.Command.Reclaim(c.Request.Context(), application.ReclaimCollateralCommand{
		IssuanceID: id,
		Seller:     req.Seller,
	})
	if err != nil {
		h.fail(c, err, "Failed to reclaim collateral")
		return
	}
	response.Success(c, gin.H{"issuance_id": id, "status": "reclaimed"})
}

// GetIssuance 查询发行详情
func (h *OptionHandler) GetIssuance(c *gin.Context) {
	id, ok := h.issuanceID(c)
	if !ok {
		return
	}
	dto, err := h.optionService.Query.GetIssuance(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrIssuanceNotFound) {
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to get issuance", "issuance_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// ListIssuances 按卖方查询存活发行
func (h *OptionHandler) ListIssuances(c *gin.Context) {
	seller := c.Query("seller")
	if seller == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "seller is required", "")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid offset", "")
		return
	}

	dtos, err := h.optionService.Query.ListBySeller(c.Request.Context(), seller, limit, offset)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to list issuances", "seller", seller, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dtos)
}

// GetCounter 查询下一个待分配的发行 id
func (h *OptionHandler) GetCounter(c *gin.Context) {
	counter, err := h.optionService.Query.GetCounter(c.Request.Context())
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get issuance counter", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"counter": counter})
}

// GetBalance 查询持有人在某发行上的持仓
func (h *OptionHandler) GetBalance(c *gin.Context) {
	holder := c.Param("holder")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid issuance id", "")
		return
	}

	balance, err := h.optionService.Query.GetBalance(c.Request.Context(), holder, id)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get balance", "holder", holder, "issuance_id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"holder": holder, "issuance_id": id, "balance": balance.String()})
}

func (h *OptionHandler) issuanceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid issuance id", "")
		return 0, false
	}
	return id, true
}

// fail 业务拒绝返回 400 并原样透出错误文案，其余按内部错误处理
func (h *OptionHandler) fail(c *gin.Context, err error, msg string) {
	if isRejection(err) {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	logging.Error(c.Request.Context(), msg, "error", err)
	response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
}

func isRejection(err error) bool {
	for _, sentinel := range []error{
		domain.ErrWindowEnded,
		domain.ErrWindowClosed,
		domain.ErrWindowNotStarted,
		domain.ErrSoldOut,
		domain.ErrNotSeller,
		domain.ErrAlreadySold,
		domain.ErrPriceNotBinary,
		domain.ErrUnknownToken,
		domain.ErrInsufficientPositions,
		domain.ErrNonFungibleAmount,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidPrice,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	// 代币后端的回绝原因（如 "ERC20: insufficient allowance"）原样透出
	return strings.HasPrefix(err.Error(), "ERC")
}
