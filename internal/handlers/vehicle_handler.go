package handlers

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"rentride/internal/models"
	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
	maxImageSize   int64
}

func NewVehicleHandler(vehicleService services.VehicleService, maxImageSize int64) *VehicleHandler {
	if maxImageSize <= 0 {
		maxImageSize = utils.MaxImageSize
	}
	return &VehicleHandler{vehicleService: vehicleService, maxImageSize: maxImageSize}
}

func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	vehicles, total, err := h.vehicleService.List(c.Request.Context(), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}

	utils.SuccessResponseWithMeta(c, "Vehicles retrieved successfully", vehicles, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle retrieved successfully", vehicle)
}

func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var request validators.VehicleCreateRequest
	if !bindJSON(c, &request) {
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), &models.Vehicle{
		Make:        request.Make,
		Model:       request.Model,
		Year:        request.Year,
		Type:        request.Type,
		Location:    request.Location,
		Description: request.Description,
		PricePerDay: request.PricePerDay,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle created successfully", vehicle)
}

// UploadImage expects a multipart form with the file in field "image".
func (h *VehicleHandler) UploadImage(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "image file is required")
		return
	}
	if header.Size > h.maxImageSize {
		utils.BadRequestResponse(c, fmt.Sprintf("image exceeds %d bytes", h.maxImageSize))
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "unreadable image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		utils.BadRequestResponse(c, "unreadable image file")
		return
	}

	vehicle, err := h.vehicleService.UploadImage(c.Request.Context(), id, &services.ImageUploadRequest{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Image uploaded successfully", vehicle)
}
