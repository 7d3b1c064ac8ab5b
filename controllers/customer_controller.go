package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-reservations/repositories"
	"hotel-reservations/services"
)

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50,personname"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Phone    string `json:"phone" binding:"required,numeric,min=10,max=15"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,max=50,password"`
}

type UpdateCustomerRequest struct {
	Phone *string `json:"phone" binding:"omitempty,numeric,min=10,max=15"`
}

var customerLockedFields = []string{"name", "email", "username", "active_reservations"}

type CustomerController struct {
	CustomerSvc *services.CustomerService
	Log         *zap.Logger
}

func NewCustomerController(svc *services.CustomerService, log *zap.Logger) *CustomerController {
	return &CustomerController{CustomerSvc: svc, Log: log}
}

// GetCustomers handles GET /api/customers
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	customers, err := cc.CustomerSvc.List(c.Request.Context(), repositories.CustomerFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Phone: c.Query("phone"),
	})
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer handles GET /api/customers/:id
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := cc.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles POST /api/customers
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := cc.CustomerSvc.Create(c.Request.Context(), services.CreateCustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/customers/:id
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	raw, err := bindPartial(c, &req)
	if err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := cc.CustomerSvc.Update(c.Request.Context(), id, services.UpdateCustomerInput{
		Phone:        req.Phone,
		LockedFields: presentKeys(raw, customerLockedFields...),
	})
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/customers/:id
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := cc.CustomerSvc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
