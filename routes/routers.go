package routes

import (
	"catalog/constants"
	"catalog/controllers"
	middlewares "catalog/middleware"
	"catalog/services"

	"github.com/gin-gonic/gin"
)

// Controllers gom các controller đã được khởi tạo trong main
type Controllers struct {
	Category controllers.CategoryController
	Discount controllers.DiscountController
	Product  controllers.ProductController
	Variant  controllers.VariantController
	Feedback controllers.FeedbackController
	Upload   controllers.UploadController
}

func SetupRoutes(router *gin.Engine, h Controllers, parser *services.TokenParser) {
	auth := func(roles ...string) gin.HandlerFunc {
		return middlewares.AuthMiddleware(parser, roles...)
	}
	admin := auth(constants.RoleAdmin)
	seller := auth(constants.RoleSeller)
	customer := auth(constants.RoleCustomer)

	v1 := router.Group("/api/v1")

	category := v1.Group("/category")
	category.POST("/root", admin, h.Category.CreateRoot)
	category.POST("/branch", admin, h.Category.CreateBranch)
	category.POST("/insert", admin, h.Category.Insert)
	category.PUT("/:category_id", admin, h.Category.Update)
	category.DELETE("/:category_id", admin, h.Category.Delete)
	category.GET("/level/:level", h.Category.ListByLevel)
	category.GET("/children/:parent_id", h.Category.ListChildren)
	category.GET("/path/:category_id", h.Category.Path)

	discount := v1.Group("/discount")
	discount.POST("", seller, h.Discount.Create)
	discount.GET("/seller", seller, h.Discount.ListBySeller)
	discount.GET("/:discount_id", h.Discount.GetByID)
	discount.PUT("/toggle/:discount_id", seller, h.Discount.Toggle)
	discount.PUT("/apply/:discount_id/:product_id", seller, h.Discount.Apply)
	discount.PUT("/remove/:discount_id/:product_id", seller, h.Discount.Remove)
	discount.DELETE("/:discount_id", seller, h.Discount.Delete)
	discount.POST("/refresh", admin, h.Discount.Refresh)

	usage := v1.Group("/discount_usage")
	usage.POST("", customer, h.Discount.RecordUsage)
	usage.GET("/product/:product_id", customer, h.Discount.UsageByProduct)
	usage.GET("/:discount_id", seller, h.Discount.UsageByDiscount)
	usage.GET("/:discount_id/summary", seller, h.Discount.UsageSummary)

	product := v1.Group("/product")
	product.POST("", seller, h.Product.Create)
	product.GET("/flash-sale", h.Product.FlashSale)
	product.GET("/top-selling", h.Product.TopSelling)
	product.GET("/search", h.Product.Search)
	product.POST("/filter", h.Product.Filter)
	product.POST("/by-ids", h.Product.ByIDs)
	product.POST("/refresh", admin, h.Product.Refresh)
	product.GET("/seller/:seller_id", h.Product.ListBySeller)
	product.GET("/discount/:product_id", middlewares.OptionalAuth(parser), h.Product.Discounts)
	product.GET("/logs/:product_id", seller, h.Product.Logs)
	product.GET("/:product_id", h.Product.GetByID)
	product.PUT("/:product_id", seller, h.Product.Update)
	product.PUT("/toggle/:product_id", seller, h.Product.ToggleActive)
	product.PUT("/stock/add/:product_id", seller, h.Product.AddStock)
	product.PUT("/stock/del/:product_id", seller, h.Product.DelStock)
	product.DELETE("/:product_id", seller, h.Product.Delete)

	variant := v1.Group("/variant")
	variant.POST("", auth(constants.RoleAdmin, constants.RoleSeller), h.Variant.Create)
	variant.POST("/bulk", auth(constants.RoleAdmin, constants.RoleSeller), h.Variant.BulkCreate)
	variant.GET("/sku/:sku", h.Variant.GetBySKU)
	variant.GET("/category/:category_id", h.Variant.ByCategory)
	variant.GET("/group/:group", h.Variant.ByGroup)
	variant.PUT("/:sku", admin, h.Variant.Update)
	variant.DELETE("/group/:group", admin, h.Variant.DeleteGroup)
	variant.DELETE("/:sku", admin, h.Variant.Delete)

	feedback := v1.Group("/feedback")
	feedback.POST("", customer, h.Feedback.Create)
	feedback.POST("/reply/:feedback_id", seller, h.Feedback.Reply)
	feedback.DELETE("/:feedback_id", auth(constants.RoleCustomer, constants.RoleSeller), h.Feedback.Delete)
	feedback.GET("/product/:product_id", h.Feedback.ByProduct)
	feedback.GET("/seller", seller, h.Feedback.BySeller)
	feedback.GET("/rating/:product_id", h.Feedback.Rating)

	upload := v1.Group("/upload", auth())
	upload.POST("/image", h.Upload.UploadImage)
	upload.POST("/images", h.Upload.UploadImages)
}
