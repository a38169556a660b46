package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sports Grades API",
        "description": "Student-athlete search and grade lookup for mentors and coaches",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Student-athlete search"},
        {"name": "Grades", "description": "Per-course grade breakdowns"},
        {"name": "Access", "description": "Mentor access grants"},
        {"name": "Sports", "description": "Sport catalogue"},
        {"name": "Ops", "description": "Health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/students/search": {
            "get": {
                "tags": ["Students"],
                "summary": "Search student-athletes visible to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "universal_id", "in": "query", "type": "string"},
                    {"name": "username", "in": "query", "type": "string"},
                    {"name": "firstname", "in": "query", "type": "string"},
                    {"name": "lastname", "in": "query", "type": "string"},
                    {"name": "major", "in": "query", "type": "string"},
                    {"name": "classification", "in": "query", "type": "string", "enum": ["FR", "SO", "JR", "SR", "GR"]},
                    {"name": "sport", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Matching students", "schema": {"$ref": "#/definitions/SearchResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Course grades for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Grade report", "schema": {"$ref": "#/definitions/GradeReport"}},
                    "403": {"description": "No access to this student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/grades/export": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download the grade report",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File attachment", "schema": {"type": "file"}},
                    "403": {"description": "No access to this student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/grades/cache": {
            "delete": {
                "tags": ["Grades"],
                "summary": "Drop cached grade results for a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Purged"}
                }
            }
        },
        "/api/v1/sports": {
            "get": {
                "tags": ["Sports"],
                "summary": "List sports",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sports", "schema": {"type": "array", "items": {"$ref": "#/definitions/Sport"}}}
                }
            }
        },
        "/api/v1/access/me": {
            "get": {
                "tags": ["Access"],
                "summary": "Resolved access policy of the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Access policy", "schema": {"$ref": "#/definitions/AccessPolicy"}}
                }
            }
        },
        "/api/v1/access/grants": {
            "get": {
                "tags": ["Access"],
                "summary": "List sport grants grouped by sport",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Grant groups", "schema": {"type": "array", "items": {"$ref": "#/definitions/AccessGrantGroup"}}}
                }
            },
            "post": {
                "tags": ["Access"],
                "summary": "Grant users access to a sport or to all sports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAccessGrantRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created grants"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/access/grants/{id}": {
            "delete": {
                "tags": ["Access"],
                "summary": "Remove a sport grant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/access/student-grants": {
            "get": {
                "tags": ["Access"],
                "summary": "List per-student grants",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Student grants"}
                }
            },
            "post": {
                "tags": ["Access"],
                "summary": "Grant a user access to one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentGrantRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Grant already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/access/student-grants/{id}": {
            "delete": {
                "tags": ["Access"],
                "summary": "Remove a per-student grant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Cache and request counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Metrics snapshot"}
                }
            }
        }
    },
    "definitions": {
        "Sport": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "code": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "StudentAthlete": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "firstname": {"type": "string"},
                "lastname": {"type": "string"},
                "email": {"type": "string"},
                "universal_id": {"type": "string"},
                "college": {"type": "string"},
                "major": {"type": "string"},
                "classification": {"type": "string"},
                "sports": {"type": "array", "items": {"$ref": "#/definitions/Sport"}}
            }
        },
        "SearchResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/StudentAthlete"}}
            }
        },
        "GradeItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "module": {"type": "string"},
                "weight": {"type": "number"},
                "weight_formatted": {"type": "string"},
                "grade": {"type": "number"},
                "grade_formatted": {"type": "string"},
                "grade_max": {"type": "number"},
                "percentage": {"type": "number"},
                "percentage_formatted": {"type": "string"},
                "contribution": {"type": "number"},
                "contribution_formatted": {"type": "string"}
            }
        },
        "CourseGrade": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "fullname": {"type": "string"},
                "shortname": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "final_grade": {"type": "number"},
                "final_grade_formatted": {"type": "string"},
                "letter_grade": {"type": "string"},
                "grade_items": {"type": "array", "items": {"$ref": "#/definitions/GradeItem"}}
            }
        },
        "GradeReport": {
            "type": "object",
            "properties": {
                "student_id": {"type": "integer"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/CourseGrade"}},
                "generated_at": {"type": "string", "format": "date-time"}
            }
        },
        "AccessPolicy": {
            "type": "object",
            "properties": {
                "all_sports": {"type": "boolean"},
                "sport_codes": {"type": "array", "items": {"type": "string"}},
                "student_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "AccessGrantGroup": {
            "type": "object",
            "properties": {
                "sport": {"type": "string"},
                "grants": {"type": "array", "items": {"type": "object"}}
            }
        },
        "CreateAccessGrantRequest": {
            "type": "object",
            "required": ["user_ids"],
            "properties": {
                "user_ids": {"type": "array", "items": {"type": "integer"}},
                "sport_id": {"type": "integer"}
            }
        },
        "CreateStudentGrantRequest": {
            "type": "object",
            "required": ["user_id", "student_id"],
            "properties": {
                "user_id": {"type": "integer"},
                "student_id": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
