// Package handlers exposes the inventory pipeline over HTTP. Failures use a
// flat {ok:false, error} envelope: validation and unreadable-file errors map
// to 400, everything else to 500.
package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"stockledger/internal/analytics"
	"stockledger/internal/models"
	"stockledger/internal/services"
)

type InventoryHandlers struct {
	imports   *services.ImportService
	inventory *services.InventoryService
	analysis  *analytics.AnalysisService
}

func NewInventoryHandlers(
	imports *services.ImportService,
	inventory *services.InventoryService,
	analysis *analytics.AnalysisService,
) *InventoryHandlers {
	return &InventoryHandlers{
		imports:   imports,
		inventory: inventory,
		analysis:  analysis,
	}
}

func (h *InventoryHandlers) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/inventories", h.ListInventories)
	api.POST("/inventories", h.CreateInventory)
	api.POST("/inventories/:name/import", h.Import)
	api.GET("/inventories/:name/batches", h.ListBatches)
	api.GET("/inventories/:name/products", h.ListProducts)
	api.GET("/inventories/:name/records", h.ListRecords)
	api.GET("/inventories/:name/products/:code/history", h.ProductHistory)
	api.GET("/inventories/:name/analysis", h.Analysis)
	api.GET("/inventories/:name/monthly", h.MonthlyMovements)
	api.GET("/inventories/:name/summary", h.Summary)
}

func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	if services.IsValidationError(err) {
		status = http.StatusBadRequest
	} else {
		logrus.WithError(err).Error("request failed")
	}
	return c.JSON(status, echo.Map{"ok": false, "error": err.Error()})
}

func (h *InventoryHandlers) ListInventories(c echo.Context) error {
	names, err := h.inventory.ListInventories(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"inventories": names})
}

func (h *InventoryHandlers) CreateInventory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid request body"})
	}

	name, err := h.inventory.CreateInventory(c.Request().Context(), req.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"inventory_name": name})
}

// Import accepts a multipart form with an optional base_file part plus any
// number of update_files parts, and runs the whole upload in one shot.
func (h *InventoryHandlers) Import(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "multipart form required"})
	}

	var baseFile *services.UploadedFile
	if headers := form.File["base_file"]; len(headers) > 0 {
		f, err := readUpload(headers[0])
		if err != nil {
			return errorResponse(c, err)
		}
		baseFile = &f
	}

	var updateFiles []services.UploadedFile
	for _, header := range form.File["update_files"] {
		f, err := readUpload(header)
		if err != nil {
			return errorResponse(c, err)
		}
		updateFiles = append(updateFiles, f)
	}

	summary, err := h.imports.ImportInventory(c.Request().Context(), c.Param("name"), baseFile, updateFiles)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func readUpload(header *multipart.FileHeader) (services.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return services.UploadedFile{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return services.UploadedFile{}, err
	}
	return services.UploadedFile{Name: header.Filename, Content: content}, nil
}

func (h *InventoryHandlers) ListBatches(c echo.Context) error {
	batches, err := h.inventory.ListBatches(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"batches": batches})
}

func (h *InventoryHandlers) ListProducts(c echo.Context) error {
	products, err := h.inventory.ListProducts(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *InventoryHandlers) ListRecords(c echo.Context) error {
	filter := &models.RecordFilter{
		Warehouse: c.QueryParam("warehouse"),
		Category:  c.QueryParam("category"),
		Search:    c.QueryParam("search"),
		Limit:     parseIntParam(c, "limit"),
	}
	var err error
	if filter.DateFrom, err = parseDateParam(c, "date_from"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "date_from must be YYYY-MM-DD"})
	}
	if filter.DateTo, err = parseDateParam(c, "date_to"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "date_to must be YYYY-MM-DD"})
	}

	records, err := h.inventory.ListRecords(c.Request().Context(), c.Param("name"), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"records": records, "count": len(records)})
}

func (h *InventoryHandlers) ProductHistory(c echo.Context) error {
	records, err := h.inventory.ProductHistory(c.Request().Context(), c.Param("name"), c.Param("code"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"history": records})
}

func (h *InventoryHandlers) Analysis(c echo.Context) error {
	filter := &models.AnalysisFilter{
		Category:     c.QueryParam("category"),
		Warehouse:    c.QueryParam("warehouse"),
		Search:       c.QueryParam("search"),
		Rotation:     c.QueryParam("rotation"),
		Stagnant:     parseBoolParam(c, "stagnant"),
		HighRotation: parseBoolParam(c, "high_rotation"),
		Limit:        parseIntParam(c, "limit"),
	}

	rows, err := h.analysis.Analyze(c.Request().Context(), services.NormalizeInventoryName(c.Param("name")), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"analysis": rows, "count": len(rows)})
}

func (h *InventoryHandlers) MonthlyMovements(c echo.Context) error {
	filter := &models.MonthlyFilter{
		Warehouse: c.QueryParam("warehouse"),
		Category:  c.QueryParam("category"),
		Search:    c.QueryParam("search"),
	}

	movements, err := h.analysis.MonthlyMovements(c.Request().Context(), services.NormalizeInventoryName(c.Param("name")), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"months": movements})
}

func (h *InventoryHandlers) Summary(c echo.Context) error {
	summary, err := h.analysis.Summary(c.Request().Context(), services.NormalizeInventoryName(c.Param("name")))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func parseIntParam(c echo.Context, name string) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseBoolParam(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
