package api

import (
	"net/http"

	"TickBoard/internal/domain/models"
	"TickBoard/internal/usecase"
	"TickBoard/internal/view"
	xhttp "TickBoard/pkg/http"
	xlogger "TickBoard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BoardEchoHandler serves the operator-facing view of the current
// snapshot: summary counters, the stock tables, and the status banner.
type BoardEchoHandler struct {
	logger *xlogger.Logger
	board  *usecase.Board
}

func NewBoardEchoHandler(logger *xlogger.Logger, board *usecase.Board) *BoardEchoHandler {
	return &BoardEchoHandler{logger: logger, board: board}
}

func (h *BoardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/summary", h.Summary)
	g.GET("/stocks", h.Stocks)
	g.GET("/status", h.Status)
	e.GET("/healthz", h.Health)
}

// StockRow is one table row: the record plus its visual change class.
type StockRow struct {
	models.StockRecord
	ChangeClass view.PriceClass `json:"change_class"`
}

// StocksRequest filters the stock table.
type StocksRequest struct {
	BreakoutsOnly bool `query:"breakouts_only"`
	Limit         int  `query:"limit" validate:"gte=0,lte=1000"`
}

func (h *BoardEchoHandler) Summary(c echo.Context) error {
	return xhttp.SuccessResponse(c, view.Summarize(h.board.Current()))
}

func (h *BoardEchoHandler) Stocks(c echo.Context) error {
	req := &StocksRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.board.Current()
	var records []models.StockRecord
	if req.BreakoutsOnly {
		records = view.BreakoutRows(snap)
	} else {
		records = view.AllRows(snap)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	rows := make([]StockRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, StockRow{
			StockRecord: r,
			ChangeClass: view.ClassifyChange(r.PriceChange),
		})
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *BoardEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.board.Status())
}

func (h *BoardEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
