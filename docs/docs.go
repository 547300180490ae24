// Package docs registers the swagger document served at /swagger.
// Regenerate with: swag init -g cmd/api/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/orders": {
            "get": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "List orders", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Create order", "responses": {"201": {"description": "Created"}}}
        },
        "/orders/{id}": {
            "get": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Get order", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Update order header", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Delete order", "responses": {"204": {"description": "No Content"}}}
        },
        "/orders/{id}/items": {"post": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Add order item", "responses": {"201": {"description": "Created"}}}},
        "/orders/{id}/items/{itemId}": {
            "patch": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Update order item", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Remove order item", "responses": {"200": {"description": "OK"}}}
        },
        "/orders/{id}/payments": {
            "get": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "List payments", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Register payment", "responses": {"201": {"description": "Created"}}}
        },
        "/orders/{id}/transitions": {"post": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Change order status", "responses": {"200": {"description": "OK"}}}},
        "/orders/{id}/history": {"get": {"security": [{"Bearer": []}], "tags": ["orders"], "summary": "Status history", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/summary": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Order summary", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/totals": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Totals summary", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/overdue": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Overdue orders", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/upcoming": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Upcoming deliveries", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/by-status": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Orders by status", "responses": {"200": {"description": "OK"}}}},
        "/orders/reports/monthly": {"get": {"security": [{"Bearer": []}], "tags": ["reports"], "summary": "Monthly statistics", "responses": {"200": {"description": "OK"}}}},
        "/clients": {
            "get": {"security": [{"Bearer": []}], "tags": ["clients"], "summary": "List clients", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["clients"], "summary": "Create client", "responses": {"201": {"description": "Created"}}}
        },
        "/products": {
            "get": {"security": [{"Bearer": []}], "tags": ["products"], "summary": "List products", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["products"], "summary": "Create product", "responses": {"201": {"description": "Created"}}}
        },
        "/tenants": {
            "get": {"security": [{"Bearer": []}], "tags": ["tenants"], "summary": "List tenants", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["tenants"], "summary": "Create tenant", "responses": {"201": {"description": "Created"}}}
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Arte Ideas API",
	Description:      "Sales orders, payments and stock for Arte Ideas studios",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
