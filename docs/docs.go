// Package docs holds the OpenAPI 2.0 description of the JSON API, kept in
// step with the @Router annotations on the handlers.
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
            "url": "https://codeberg.org/algrv/authgate"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/login": {
            "post": {
                "description": "Authenticate with email and password and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "description": "Clear the session cookie and any pending OAuth state",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.MessageResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "description": "Create an email/password account and start a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "New account",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/verify": {
            "post": {
                "description": "Verify an identity-provider ID token, provision the user and store the token as the session cookie",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify identity token",
                "parameters": [
                    {
                        "description": "Provider ID token",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.VerifyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.VerifyResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/google": {
            "get": {
                "description": "Redirect to Google's consent screen",
                "tags": ["auth"],
                "summary": "Start Google sign-in",
                "responses": {
                    "307": {"description": "Redirect to Google", "schema": {"type": "string"}}
                }
            }
        },
        "/api/auth/google/callback": {
            "get": {
                "description": "Complete Google sign-in, provision the user, start a session and redirect to the dashboard",
                "tags": ["auth"],
                "summary": "Google sign-in callback",
                "responses": {
                    "302": {"description": "Redirect to the dashboard, or to the login page on failure", "schema": {"type": "string"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "security": [{"SessionCookie": []}],
                "description": "Get the signed-in user's stored profile",
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Get profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"SessionCookie": []}],
                "description": "Update the signed-in user's profile fields",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile",
                "parameters": [
                    {
                        "description": "Profile update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/profile.UpdateProfileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/profile/avatar": {
            "post": {
                "security": [{"SessionCookie": []}],
                "description": "Presign a direct upload of a profile photo to object storage",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Request avatar upload",
                "parameters": [
                    {
                        "description": "Image content type",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/profile.AvatarUploadRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.AvatarUploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness probe; also reports whether the database answers when one is configured",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/health.Response"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "auth.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string", "maxLength": 100, "minLength": 2},
                "password": {"type": "string", "maxLength": 72, "minLength": 8}
            }
        },
        "auth.UserResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/users.User"}
            }
        },
        "auth.VerifyRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"}
            }
        },
        "auth.VerifyResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/users.User"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"},
                "issues": {"type": "object", "additionalProperties": {"type": "string"}},
                "message": {"type": "string"}
            }
        },
        "health.Response": {
            "type": "object",
            "properties": {
                "auth_mode": {"type": "string"},
                "database": {"type": "string"},
                "service": {"type": "string"},
                "status": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "profile.AvatarUploadRequest": {
            "type": "object",
            "required": ["content_type"],
            "properties": {
                "content_type": {"type": "string"}
            }
        },
        "profile.AvatarUploadResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "photo_url": {"type": "string"},
                "upload_url": {"type": "string"}
            }
        },
        "profile.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "bio": {"type": "string", "maxLength": 1000},
                "location": {"type": "string", "maxLength": 100},
                "name": {"type": "string", "maxLength": 100, "minLength": 2},
                "phone": {"type": "string", "maxLength": 32},
                "photo_url": {"type": "string", "maxLength": 500},
                "title": {"type": "string", "maxLength": 100}
            }
        },
        "profile.UserResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/users.User"}
            }
        },
        "users.User": {
            "type": "object",
            "properties": {
                "bio": {"type": "string"},
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "photo_url": {"type": "string"},
                "title": {"type": "string"},
                "uid": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "SessionCookie": {
            "description": "HTTP-only session cookie set by login, register or verify",
            "type": "apiKey",
            "name": "Cookie",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "authgate API",
	Description:      "Email/password and federated sign-in with cookie sessions and profile editing",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
