package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API docs.
// - GET /swagger/index.html  -> swagger-ui page loading doc.json
// - GET /swagger/doc.json    -> OpenAPI document
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Smart Campus Portal API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "smart-campus-portal", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "session": { "type": "apiKey", "in": "cookie", "name": "session" } }
  },
  "paths": {
    "/api/auth/register": {
      "post": {
        "summary": "Create a password account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","email","password"],"properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"role":{"type":"string","enum":["student","faculty","admin"]},"studentId":{"type":"string"}}}}}},
        "responses": { "200": { "description": "account created" }, "400": { "description": "email exists or invalid input" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Sign in with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "session cookie set" }, "400": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/google": {
      "post": {
        "summary": "Sign in with a Google ID token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"idToken":{"type":"string"},"credential":{"type":"string"}}}}}},
        "responses": { "200": { "description": "session cookie set" }, "400": { "description": "missing token" }, "401": { "description": "invalid token" }, "403": { "description": "email domain not allowed" } }
      }
    },
    "/api/auth/me": { "get": { "summary": "Current user or null", "responses": { "200": { "description": "user" } } } },
    "/api/auth/logout": { "post": { "summary": "End the session", "security": [{"session":[]}], "responses": { "200": { "description": "cookie cleared" }, "401": { "description": "no session" } } } },
    "/api/admin/users": { "get": { "summary": "List users", "security": [{"session":[]}], "parameters": [{"name":"page","in":"query","schema":{"type":"integer"}},{"name":"limit","in":"query","schema":{"type":"integer","maximum":100}}], "responses": { "200": { "description": "users" }, "403": { "description": "not admin" } } } },
    "/api/admin/users/{id}/role": { "post": { "summary": "Change a user's role", "security": [{"session":[]}], "responses": { "200": { "description": "updated" }, "400": { "description": "invalid role" }, "404": { "description": "no such user" } } } },
    "/api/events": {
      "get": { "summary": "List events", "responses": { "200": { "description": "events" } } },
      "post": { "summary": "Create an event", "security": [{"session":[]}], "responses": { "200": { "description": "created" }, "400": { "description": "title or date missing" } } }
    },
    "/api/clubs": {
      "get": { "summary": "List clubs", "responses": { "200": { "description": "clubs" } } },
      "post": { "summary": "Create a club", "security": [{"session":[]}], "responses": { "200": { "description": "created" }, "400": { "description": "name missing or taken" } } }
    },
    "/api/clubs/{id}": {
      "get": { "summary": "Get a club", "responses": { "200": { "description": "club" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Edit a club (owner or admin)", "security": [{"session":[]}], "responses": { "200": { "description": "updated" }, "403": { "description": "not allowed" } } },
      "delete": { "summary": "Delete a club (owner or admin)", "security": [{"session":[]}], "responses": { "200": { "description": "deleted" }, "403": { "description": "not allowed" } } }
    },
    "/api/clubs/{id}/join": { "post": { "summary": "Join a club", "security": [{"session":[]}], "responses": { "200": { "description": "club" } } } },
    "/api/clubs/{id}/leave": { "post": { "summary": "Leave a club", "security": [{"session":[]}], "responses": { "200": { "description": "club" } } } },
    "/api/lost-items": {
      "get": { "summary": "List lost and found reports", "responses": { "200": { "description": "items" } } },
      "post": { "summary": "Report an item", "security": [{"session":[]}], "responses": { "200": { "description": "created" }, "400": { "description": "title missing" } } }
    },
    "/api/lost-items/{id}": {
      "patch": { "summary": "Edit a report (reporter or admin)", "security": [{"session":[]}], "responses": { "200": { "description": "updated" }, "403": { "description": "not allowed" } } },
      "delete": { "summary": "Delete a report (reporter or admin)", "security": [{"session":[]}], "responses": { "200": { "description": "deleted" }, "403": { "description": "not allowed" } } }
    },
    "/api/lost-items/{id}/return": { "patch": { "summary": "Mark returned (reporter)", "security": [{"session":[]}], "responses": { "200": { "description": "updated" } } } },
    "/api/lost-items/{id}/image": { "post": { "summary": "Upload a photo", "security": [{"session":[]}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"image":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "updated" }, "503": { "description": "storage not configured" } } } },
    "/api/issues": {
      "get": { "summary": "List reports", "parameters": [{"name":"type","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "items" } } },
      "post": { "summary": "Submit feedback", "responses": { "200": { "description": "created" }, "400": { "description": "missing fields" } } }
    },
    "/api/issues/{id}": {
      "get": { "summary": "Get a report", "responses": { "200": { "description": "item" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Moderate a report (admin)", "security": [{"session":[]}], "responses": { "200": { "description": "updated" }, "400": { "description": "invalid status" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "running" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
