// Package docs registers the scoreboard OpenAPI document with swag so that
// http-swagger can serve it under /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/teams": {
            "get": {"summary": "List teams by total points", "responses": {"200": {"description": "OK"}}},
            "post": {
                "summary": "Create a team with its logo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "name", "in": "formData", "type": "string", "required": true},
                    {"name": "slot", "in": "formData", "type": "integer", "required": true},
                    {"name": "logo", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Slot or name taken"}, "502": {"description": "Logo upload failed"}}
            }
        },
        "/teams/{teamID}": {
            "get": {"summary": "Get a team", "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"summary": "Delete a team", "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        },
        "/teams/{teamID}/kills": {
            "put": {
                "summary": "Adjust ({delta}) or set ({kills}) kills of the current round",
                "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}, {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/KillsRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid kills or no active round"}, "404": {"description": "Not found"}}
            }
        },
        "/teams/{teamID}/kills/increment": {
            "post": {"summary": "Add one kill", "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/teams/{teamID}/kills/decrement": {
            "post": {"summary": "Remove one kill", "description": "Rejected with 400 when the current round already has zero kills; the counter is never clamped silently.", "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "No kills to remove in the current round"}}}
        },
        "/teams/{teamID}/elimination": {
            "put": {
                "summary": "Toggle one player's elimination in the current round",
                "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}, {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/EliminationRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid player index"}}
            }
        },
        "/rounds": {
            "post": {
                "summary": "Create a round for the selected teams",
                "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/CreateRoundRequest"}}],
                "responses": {"200": {"description": "All teams updated"}, "207": {"description": "Partial success"}}
            }
        },
        "/rounds/{roundNumber}": {
            "delete": {
                "summary": "Delete a round from the selected teams",
                "parameters": [{"name": "roundNumber", "in": "path", "type": "integer", "required": true}, {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/TeamSelector"}}],
                "responses": {"200": {"description": "All teams updated"}, "207": {"description": "Partial success"}}
            }
        },
        "/rounds/{roundNumber}/positions": {
            "put": {
                "summary": "Set final positions by slot",
                "parameters": [{"name": "roundNumber", "in": "path", "type": "integer", "required": true}, {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/PositionsRequest"}}],
                "responses": {"200": {"description": "All teams updated"}, "207": {"description": "Partial success"}}
            }
        },
        "/elimination/track": {"post": {"summary": "Track one team round", "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/TeamRoundRequest"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Team or round not found"}}}},
        "/elimination/display": {"post": {"summary": "Mark a team round as displayed", "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/TeamRoundRequest"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not tracked"}}}},
        "/elimination/check/{teamID}/{roundNumber}": {"get": {"summary": "Check display status", "parameters": [{"name": "teamID", "in": "path", "type": "integer", "required": true}, {"name": "roundNumber", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/elimination/sync": {"post": {"summary": "Project team rounds into notifications and rank eliminations", "responses": {"200": {"description": "OK"}}}},
        "/elimination/pending": {"get": {"summary": "Eliminated and not displayed, oldest first", "parameters": [{"name": "round", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/elimination/all": {"get": {"summary": "All notifications by round", "parameters": [{"name": "round", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/elimination/{notificationID}/displayed": {"patch": {"summary": "Mark a notification as displayed", "parameters": [{"name": "notificationID", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/elimination/round/{roundNumber}/reset": {"patch": {"summary": "Replay a round's reveal", "parameters": [{"name": "roundNumber", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/elimination/reset": {"delete": {"summary": "Delete every notification", "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "KillsRequest": {"type": "object", "properties": {"delta": {"type": "integer"}, "kills": {"type": "integer"}}},
        "EliminationRequest": {"type": "object", "properties": {"player_index": {"type": "integer", "minimum": 0, "maximum": 3}}},
        "TeamSelector": {"type": "object", "properties": {"slots": {"type": "array", "items": {"type": "integer"}}, "team_ids": {"type": "array", "items": {"type": "integer"}}}},
        "CreateRoundRequest": {"type": "object", "properties": {"round_number": {"type": "integer"}, "slots": {"type": "array", "items": {"type": "integer"}}, "team_ids": {"type": "array", "items": {"type": "integer"}}}},
        "PositionsRequest": {"type": "object", "properties": {"slot_positions": {"type": "array", "items": {"type": "object", "properties": {"slot": {"type": "integer"}, "position": {"type": "integer"}}}}}},
        "TeamRoundRequest": {"type": "object", "properties": {"team_id": {"type": "integer"}, "round_number": {"type": "integer"}}}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Scoreboard API",
	Description:      "Battle-royale scoreboard: teams, rounds, kills, placements and elimination reveals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
