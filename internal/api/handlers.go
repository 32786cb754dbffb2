package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/talgya/foodcity/internal/action"
	"github.com/talgya/foodcity/internal/catalog"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/weather"
)

// maxAdvanceDays bounds one POST /advance.
const maxAdvanceDays = 365

func (s *Server) handleStatus(c context.Context, ctx *app.RequestContext) {
	snap := s.Sim.Snapshot()
	status := map[string]any{
		"day":       snap.Day,
		"budget":    snap.Budget,
		"psi":       snap.Ratio,
		"psi_mode":  s.Sim.Params().RatioMode,
		"happiness": snap.Happiness,
		"emissions": snap.Emissions,
		"events":    snap.Events,
	}
	if s.WorldID != nil {
		status["world_id"] = s.WorldID()
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	ctx.JSON(consts.StatusOK, status)
}

func (s *Server) handleGrid(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, s.Sim.Snapshot().Grid)
}

func (s *Server) handleHistory(c context.Context, ctx *app.RequestContext) {
	window := s.Sim.Params().RatioWindow
	if w := string(ctx.Query("window")); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "window must be a positive integer")
			return
		}
		window = n
	}
	ctx.JSON(consts.StatusOK, s.Sim.Snapshot().History.Series(window))
}

func (s *Server) handleSummary(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, s.Sim.Summary())
}

func (s *Server) handleTutorial(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, s.Sim.Tutorial())
}

type weatherView struct {
	weather.Event
	Description string `json:"description"`
}

func (s *Server) handleEvents(c context.Context, ctx *app.RequestContext) {
	snap := s.Sim.Snapshot()
	active := make([]weatherView, 0, len(snap.Events))
	for _, ev := range snap.Events {
		active = append(active, weatherView{Event: ev, Description: weather.Describe(ev)})
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"weather":  active,
		"messages": s.Sim.Messages(),
	})
}

func (s *Server) handleCatalog(c context.Context, ctx *app.RequestContext) {
	cat := s.Sim.Catalog()
	crops := make([]catalog.Crop, 0, len(cat.Crops))
	for _, id := range cat.CropIDs() {
		crops = append(crops, cat.Crops[id])
	}
	buildings := make([]catalog.Building, 0, len(cat.Buildings))
	mods := s.Sim.Modifiers()
	costs := make(map[catalog.BuildingID]float64, len(cat.Buildings))
	for _, id := range cat.BuildingIDs() {
		b := cat.Buildings[id]
		buildings = append(buildings, b)
		costs[id] = mods.ConstructionCost(b)
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"crops":        crops,
		"buildings":    buildings,
		"build_costs":  costs,
		"methods":      cat.Methods,
		"default_crop": cat.DefaultCrop,
	})
}

func (s *Server) handleTile(c context.Context, ctx *app.RequestContext) {
	x, errX := strconv.Atoi(ctx.Param("x"))
	y, errY := strconv.Atoi(ctx.Param("y"))
	if errX != nil || errY != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "tile coordinates must be integers")
		return
	}
	info, err := s.Sim.Inspect(x, y)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, info)
}

type tileRequest struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Building string `json:"building,omitempty"`
	Crop     string `json:"crop,omitempty"`
}

func (s *Server) handleBuild(c context.Context, ctx *app.RequestContext) {
	var body tileRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	cat := s.Sim.Catalog()
	id, err := cat.ResolveBuilding(body.Building)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var crop catalog.CropID
	if body.Crop != "" {
		if crop, err = cat.ResolveCrop(body.Crop); err != nil {
			writeError(ctx, err)
			return
		}
	}
	s.respondOutcome(ctx)(s.Sim.Build(body.X, body.Y, id, crop))
}

func (s *Server) handlePlant(c context.Context, ctx *app.RequestContext) {
	var body tileRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	crop, err := s.Sim.Catalog().ResolveCrop(body.Crop)
	if err != nil {
		writeError(ctx, err)
		return
	}
	s.respondOutcome(ctx)(s.Sim.Plant(body.X, body.Y, crop))
}

func (s *Server) handleDemolish(c context.Context, ctx *app.RequestContext) {
	var body tileRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	s.respondOutcome(ctx)(s.Sim.Demolish(body.X, body.Y))
}

func (s *Server) respondOutcome(ctx *app.RequestContext) func(action.Outcome, error) {
	return func(out action.Outcome, err error) {
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, map[string]any{
			"outcome": out,
			"budget":  s.Sim.Summary().Budget,
		})
	}
}

func (s *Server) handleAdvance(c context.Context, ctx *app.RequestContext) {
	var body struct {
		Days int `json:"days"`
	}
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Days == 0 {
		body.Days = 1
	}
	if body.Days < 0 || body.Days > maxAdvanceDays {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "days must be between 1 and 365")
		return
	}
	var last engine.DayReport
	for i := 0; i < body.Days; i++ {
		last = s.Sim.AdvanceDay()
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"days":   body.Days,
		"report": last,
	})
}

func (s *Server) handleSpeed(c context.Context, ctx *app.RequestContext) {
	if s.Eng == nil {
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "no_engine", "ticker not running")
		return
	}
	var body struct {
		Speed *int `json:"speed"`
	}
	if err := decodeJSON(ctx, &body); err != nil || body.Speed == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "body must be {\"speed\": n}")
		return
	}
	if err := s.Eng.SetSpeed(*body.Speed); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]int{"speed": s.Eng.Speed()})
}

func (s *Server) handleReset(c context.Context, ctx *app.RequestContext) {
	if s.NewCity == nil {
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "reset_disabled", "reset is not available")
		return
	}
	st, err := s.NewCity()
	if err != nil {
		slog.Error("reset failed", "error", err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "reset_failed", "could not start a new city")
		return
	}
	s.Sim.Reset(st)
	ctx.JSON(consts.StatusOK, s.Sim.Summary())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeError maps domain errors onto status codes.
func writeError(ctx *app.RequestContext, err error) {
	var unknown *catalog.UnknownIDError
	switch {
	case errors.As(err, &unknown):
		ctx.JSON(consts.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":        "unknown_" + unknown.Kind,
				"message":     err.Error(),
				"suggestions": unknown.Suggestions,
			},
		})
	case errors.Is(err, action.ErrUnknownBuilding):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_building", err.Error())
	case errors.Is(err, action.ErrUnknownCrop):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_crop", err.Error())
	case errors.Is(err, engine.ErrInvalidSpeed):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_speed", err.Error())
	case errors.Is(err, action.ErrOutOfBounds):
		writeErrorBody(ctx, consts.StatusNotFound, "tile_not_found", err.Error())
	case errors.Is(err, action.ErrInsufficientFunds):
		writeErrorBody(ctx, consts.StatusPaymentRequired, "insufficient_funds", err.Error())
	case errors.Is(err, action.ErrOccupied):
		writeErrorBody(ctx, consts.StatusConflict, "tile_occupied", err.Error())
	case errors.Is(err, action.ErrRoofOnly):
		writeErrorBody(ctx, consts.StatusConflict, "roof_only", err.Error())
	case errors.Is(err, action.ErrNotPlantable):
		writeErrorBody(ctx, consts.StatusConflict, "not_plantable", err.Error())
	case errors.Is(err, action.ErrEmptyTile):
		writeErrorBody(ctx, consts.StatusConflict, "empty_tile", err.Error())
	default:
		slog.Error("unhandled api error", "error", err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
