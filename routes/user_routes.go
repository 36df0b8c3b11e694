package routes

import (
	"github.com/fluencyclub/schoolcrm/controllers"
	"github.com/fluencyclub/schoolcrm/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes wires everything reachable without the admin role:
// public endpoints, authentication and the student-facing surface.
func initUserRoutes(api *gin.RouterGroup) {
	// Public
	api.POST("/auth/register", controllers.Register)
	api.POST("/auth/login", controllers.Login)
	api.POST("/leads", controllers.CreateLead)
	api.GET("/courses", controllers.ListCourses)
	api.GET("/courses/:id", controllers.GetCourse)
	api.GET("/settings", controllers.ListPublicSettings)

	// Payment callbacks arrive without a session: the gateway redirect
	// and the local test-payment page both authenticate by reference.
	api.GET("/payments/return", controllers.PaymentReturn)
	api.GET("/payments/test-payment/:reference", controllers.TestPaymentPage)
	api.POST("/payments/test-payment/:reference/complete", controllers.CompleteTestPayment)

	// Authenticated
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/users/me", controllers.GetProfile)
		authed.PUT("/users/me", controllers.UpdateProfile)
		authed.PUT("/users/me/password", controllers.ChangePassword)

		authed.POST("/payments/initiate", controllers.InitiatePayment)
		authed.POST("/payments/:id/confirm", controllers.ConfirmPayment)
		authed.GET("/payments/my", controllers.ListMyPayments)
		authed.GET("/payments/:id", controllers.GetPayment)

		authed.GET("/invoices/my", controllers.ListMyInvoices)
		authed.GET("/invoices/:id/download", controllers.DownloadInvoice)

		authed.POST("/support/tickets", controllers.CreateTicket)
		authed.GET("/support/tickets/my", controllers.ListMyTickets)
		authed.GET("/support/tickets/:id", controllers.GetTicket)
		authed.POST("/support/tickets/:id/messages", controllers.AddTicketMessage)
	}
}
