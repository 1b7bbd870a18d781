package server

import (
	"net/http"
	"strings"

	orderdomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type deliveryRequest struct {
	Street  string  `json:"street"`
	Area    string  `json:"area"`
	City    string  `json:"city"`
	Pincode string  `json:"pincode"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Phone   string  `json:"phone"`
}

type createOrderRequest struct {
	CustomerID    string             `json:"customer_id"`
	StoreID       string             `json:"store_id"`
	Items         []orderItemRequest `json:"items"`
	Delivery      deliveryRequest    `json:"delivery"`
	PaymentMethod string             `json:"payment_method"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items := make([]orderdomain.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	resp, err := s.orderSvc.CreateOrder(c.Request.Context(), orderdomain.CreateOrderRequest{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Items:      items,
		Delivery: orderdomain.DeliverySnapshot{
			Street:  req.Delivery.Street,
			Area:    req.Delivery.Area,
			City:    req.Delivery.City,
			Pincode: req.Delivery.Pincode,
			Lat:     req.Delivery.Lat,
			Lng:     req.Delivery.Lng,
			Phone:   req.Delivery.Phone,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.GetOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomerOrders(c *gin.Context) {
	resp, err := s.orderSvc.ListCustomerOrders(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
	Note    string `json:"note"`
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		OrderID:   strings.TrimSpace(c.Param("id")),
		NewStatus: orderdomain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		ActorID:   req.ActorID,
		Note:      req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
