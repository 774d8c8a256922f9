package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/cost-signal/backend/internal/auth"
	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
)

type SpendingHandler struct {
	Spending SpendingStore
}

// NewSpendingHandler создает обработчик профиля расходов.
func NewSpendingHandler(spending SpendingStore) *SpendingHandler {
	return &SpendingHandler{Spending: spending}
}

type SpendingPatternRequest struct {
	GasFrequency  string   `json:"gas_frequency" validate:"max=16"`
	MonthlyRent   *float64 `json:"monthly_rent" validate:"omitempty,gte=0"`
	FoodRatio     string   `json:"food_ratio" validate:"max=16"`
	TransportMode string   `json:"transport_mode" validate:"max=16"`
	HasDebt       *bool    `json:"has_debt"`
}

// Get возвращает профиль расходов текущего пользователя.
func (h *SpendingHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	pattern, err := h.Spending.GetByUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "spending pattern not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, pattern)
}

// Put целиком перезаписывает профиль расходов текущего пользователя.
func (h *SpendingHandler) Put(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SpendingPatternRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	pattern, err := req.toPattern()
	if err != nil {
		return badRequest(c, err.Error())
	}
	pattern.UserID = userID

	saved, err := h.Spending.Upsert(c.Request().Context(), pattern)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "user not found")
		case errors.Is(err, repository.ErrInvalid):
			return unprocessable(c, "invalid spending pattern")
		default:
			return serverError(c)
		}
	}

	return c.JSON(http.StatusOK, saved)
}

func (r SpendingPatternRequest) toPattern() (models.SpendingPattern, error) {
	gas, ok := models.ParseGasFrequency(r.GasFrequency)
	if !ok {
		return models.SpendingPattern{}, errors.New("invalid gas_frequency")
	}

	food, ok := models.ParseFoodRatio(r.FoodRatio)
	if !ok {
		return models.SpendingPattern{}, errors.New("invalid food_ratio")
	}

	transport, ok := models.ParseTransportMode(r.TransportMode)
	if !ok {
		return models.SpendingPattern{}, errors.New("invalid transport_mode")
	}

	if r.MonthlyRent != nil && *r.MonthlyRent < 0 {
		return models.SpendingPattern{}, errors.New("monthly_rent must be non-negative")
	}

	return models.SpendingPattern{
		GasFrequency:  gas,
		MonthlyRent:   r.MonthlyRent,
		FoodRatio:     food,
		TransportMode: transport,
		HasDebt:       r.HasDebt,
	}, nil
}
