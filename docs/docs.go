// Package docs holds the Swagger 2.0 document served at /swagger in development.
// It is kept in step with the handler annotations by hand; the router tests fail when a route is missing from it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check if the API is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/users": {
            "post": {
                "description": "Create a user account and return a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "400": {"description": "Validation error or user already exists", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/auth": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Return the user the bearer token was issued to, without the password",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.User"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "User no longer exists", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Exchange email and password for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Authenticate user",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "400": {"description": "Validation error or invalid credentials", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "List profiles",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/profile.Profile"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Present non-empty fields overwrite; skills is a comma-separated list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Create or update profile",
                "parameters": [
                    {"description": "Profile fields", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/profile.UpsertRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Delete profile and user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httputil.MessageResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Current user's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "There is no profile for this user", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/user/{user_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Profile by user id",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Profile not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/experience": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Add experience",
                "parameters": [
                    {"description": "Experience entry", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/profile.ExperienceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Validation error or no profile", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/experience/{exp_id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Remove experience",
                "parameters": [
                    {"type": "string", "description": "Experience ID", "name": "exp_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Malformed id or no profile", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/education": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Add education",
                "parameters": [
                    {"description": "Education entry", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/profile.EducationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Validation error or no profile", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/api/profile/education/{edu_id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Remove education",
                "parameters": [
                    {"type": "string", "description": "Education ID", "name": "edu_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.Profile"}},
                    "400": {"description": "Malformed id or no profile", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "user.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "avatar": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "httputil.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "msg": {"type": "string"}
            }
        },
        "httputil.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/httputil.FieldError"}}
            }
        },
        "httputil.MessageResponse": {
            "type": "object",
            "properties": {
                "msg": {"type": "string"}
            }
        },
        "profile.UpsertRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "skills": {"type": "string"},
                "company": {"type": "string"},
                "website": {"type": "string"},
                "location": {"type": "string"},
                "bio": {"type": "string"},
                "githubusername": {"type": "string"},
                "youtube": {"type": "string"},
                "twitter": {"type": "string"},
                "facebook": {"type": "string"},
                "linkedin": {"type": "string"},
                "instagram": {"type": "string"}
            }
        },
        "profile.ExperienceRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "company": {"type": "string"},
                "location": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "profile.EducationRequest": {
            "type": "object",
            "properties": {
                "school": {"type": "string"},
                "degree": {"type": "string"},
                "fieldofstudy": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "profile.Owner": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "profile.Social": {
            "type": "object",
            "properties": {
                "youtube": {"type": "string"},
                "twitter": {"type": "string"},
                "facebook": {"type": "string"},
                "linkedin": {"type": "string"},
                "instagram": {"type": "string"}
            }
        },
        "profile.Experience": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "company": {"type": "string"},
                "location": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "profile.Education": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "school": {"type": "string"},
                "degree": {"type": "string"},
                "fieldofstudy": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "current": {"type": "boolean"},
                "description": {"type": "string"}
            }
        },
        "profile.Profile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user": {"$ref": "#/definitions/profile.Owner"},
                "company": {"type": "string"},
                "website": {"type": "string"},
                "location": {"type": "string"},
                "bio": {"type": "string"},
                "status": {"type": "string"},
                "githubusername": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "social": {"$ref": "#/definitions/profile.Social"},
                "experience": {"type": "array", "items": {"$ref": "#/definitions/profile.Experience"}},
                "education": {"type": "array", "items": {"$ref": "#/definitions/profile.Education"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DevConnector API",
	Description:      "Developer profiles: registration, token authentication and profile management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
