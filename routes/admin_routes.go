package routes

import (
	"github.com/fluencyclub/schoolcrm/controllers"
	"github.com/fluencyclub/schoolcrm/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes wires the back-office surface. CRM and teaching
// endpoints are open to all staff; user management, payments oversight
// and system settings stay admin-only.
func initAdminRoutes(api *gin.RouterGroup) {
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware(), middleware.StaffMiddleware())
	{
		staff.GET("/groups", controllers.ListGroups)
		staff.GET("/groups/:id", controllers.GetGroup)
		staff.POST("/groups", controllers.CreateGroup)
		staff.POST("/groups/:id/students", controllers.AddStudentToGroup)
		staff.DELETE("/groups/:id/students/:student_id", controllers.RemoveStudentFromGroup)

		staff.GET("/lessons", controllers.ListLessons)
		staff.POST("/lessons", controllers.CreateLesson)
		staff.PUT("/lessons/:id/complete", controllers.CompleteLesson)
		staff.POST("/lessons/:id/attendance", controllers.MarkAttendance)
		staff.GET("/lessons/:id/attendance", controllers.GetLessonAttendance)

		crm := staff.Group("/crm")
		{
			crm.GET("/leads", controllers.ListLeads)
			crm.GET("/leads/:id", controllers.GetLead)
			crm.PUT("/leads/:id/status", controllers.UpdateLeadStatus)
			crm.PUT("/leads/:id/assign", controllers.AssignLead)
			crm.POST("/leads/:id/convert", controllers.ConvertLead)

			crm.GET("/customers", controllers.ListCustomers)

			crm.POST("/deals", controllers.CreateDeal)
			crm.GET("/deals", controllers.ListDeals)
			crm.PUT("/deals/:id/status", controllers.UpdateDealStatus)

			crm.POST("/activities", controllers.CreateActivity)
			crm.GET("/activities", controllers.ListActivities)
			crm.PUT("/activities/:id/complete", controllers.CompleteActivity)

			crm.POST("/tasks", controllers.CreateTask)
			crm.GET("/tasks", controllers.ListTasks)
			crm.PUT("/tasks/:id/status", controllers.UpdateTaskStatus)

			crm.POST("/notes", controllers.CreateNote)
		}

		staff.GET("/support/tickets", controllers.AdminListTickets)
		staff.PUT("/support/tickets/:id", controllers.UpdateTicket)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", controllers.AdminDashboard)

		admin.GET("/users", controllers.AdminListUsers)
		admin.PUT("/users/:id/toggle-active", controllers.AdminToggleUserActive)
		admin.PUT("/users/:id/role", controllers.AdminUpdateUserRole)

		admin.POST("/courses", controllers.CreateCourse)
		admin.PUT("/courses/:id", controllers.UpdateCourse)
		admin.DELETE("/courses/:id", controllers.DeleteCourse)

		admin.GET("/payments", controllers.AdminListPayments)
		admin.GET("/payments/report/excel", controllers.DownloadPaymentsReportExcel)
		admin.POST("/refunds", controllers.AdminCreateRefund)

		admin.GET("/settings", controllers.AdminListSettings)
		admin.PUT("/settings/:key", controllers.AdminUpdateSetting)
		admin.GET("/actions", controllers.AdminListActionLog)
	}
}
