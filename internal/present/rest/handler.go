package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/present/rest/presenter"
	"github.com/totegamma/catgraph/internal/service"
)

type Handler struct {
	schema *graphql.Schema
	signal *service.SignalService
}

func NewHandler(
	schema *graphql.Schema,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		schema: schema,
		signal: signal,
	}
}

// RegisterRoutes mounts the API. mw runs in front of /graphql only.
func (h *Handler) RegisterRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.POST("/graphql", h.handleGraphQL, mw...)
	e.GET("/graphql", h.handleGraphQL, mw...)
	e.GET("/realtime", h.handleRealtime)
	e.GET("/healthz", h.handleHealthz)
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) handleGraphQL(c echo.Context) error {
	ctx := c.Request().Context()

	var req graphQLRequest
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if vars := c.QueryParam("variables"); vars != "" {
			err := json.Unmarshal([]byte(vars), &req.Variables)
			if err != nil {
				return presenter.BadRequestMessage(c, "invalid variables parameter")
			}
		}
	} else {
		err := json.NewDecoder(c.Request().Body).Decode(&req)
		if err != nil {
			return presenter.BadRequest(c, err)
		}
	}

	if req.Query == "" {
		return presenter.BadRequestMessage(c, "query is required")
	}

	if c.Request().Method == http.MethodGet && !isQueryOperation(req.Query, req.OperationName) {
		return presenter.MethodNotAllowed(c, http.MethodPost, "only query operations are allowed over GET")
	}

	response := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	return presenter.OK(c, response)
}

// isQueryOperation reports whether the operation selected by operationName is a query.
// Documents that do not parse or select nothing are left to the executor to reject.
func isQueryOperation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return true
	}
	op := doc.Operations.ForName(operationName)
	if op == nil {
		for _, candidate := range doc.Operations {
			if candidate.Operation != ast.Query {
				return false
			}
		}
		return true
	}
	return op.Operation == ast.Query
}

func (h *Handler) handleHealthz(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type   string   `json:"type"`
	Owners []string `json:"owners"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if !h.signal.Available() {
		return presenter.ServiceUnavailable(c, "realtime feed is not configured")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.CatEvent)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Owners:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Owners),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
