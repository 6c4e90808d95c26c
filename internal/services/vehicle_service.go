package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/models"
	"rentride/internal/repositories/interfaces"
	"rentride/internal/utils"
	"rentride/pkg/logger"
	"rentride/pkg/storage"
)

type VehicleService interface {
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	UploadImage(ctx context.Context, id primitive.ObjectID, request *ImageUploadRequest) (*models.Vehicle, error)
}

type ImageUploadRequest struct {
	Filename string
	Data     []byte
}

type vehicleService struct {
	vehicleRepo  interfaces.VehicleRepository
	storage      storage.StorageProvider
	maxImageSize int64
	logger       *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, store storage.StorageProvider, maxImageSize int64, log *logger.Logger) VehicleService {
	if maxImageSize <= 0 {
		maxImageSize = utils.MaxImageSize
	}
	return &vehicleService{
		vehicleRepo:  vehicleRepo,
		storage:      store,
		maxImageSize: maxImageSize,
		logger:       log,
	}
}

func (s *vehicleService) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	return s.vehicleRepo.List(ctx, params)
}

func (s *vehicleService) Get(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	return s.vehicleRepo.GetCached(ctx, id)
}

func (s *vehicleService) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	vehicle.Bookings = nil
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	s.logger.WithVehicleID(vehicle.ID).WithField("make", vehicle.Make).Info("Vehicle created")
	return vehicle, nil
}

// UploadImage stores the original and a thumbnail, then appends both URLs
// to the vehicle.
func (s *vehicleService) UploadImage(ctx context.Context, id primitive.ObjectID, request *ImageUploadRequest) (*models.Vehicle, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: image storage not configured", utils.ErrExternalService)
	}
	if !utils.IsValidImageFormat(request.Filename) {
		return nil, fmt.Errorf("%w: allowed image types are %s", utils.ErrInvalidInput, strings.Join(utils.AllowedImageTypes, ", "))
	}
	if int64(len(request.Data)) > s.maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", utils.ErrInvalidInput, s.maxImageSize)
	}
	if _, err := utils.GetImageDimensions(request.Data); err != nil {
		return nil, fmt.Errorf("%w: unreadable image", utils.ErrInvalidInput)
	}

	if _, err := s.vehicleRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	name := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(request.Filename))

	original, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          fmt.Sprintf("vehicles/%s/%s%s", id.Hex(), name, ext),
		Reader:       bytes.NewReader(request.Data),
		ContentType:  http.DetectContentType(request.Data),
		Size:         int64(len(request.Data)),
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrExternalService, err)
	}

	thumbURL := ""
	thumb, contentType, err := utils.GenerateThumbnail(request.Data, utils.ThumbnailMaxSize)
	if err != nil {
		s.logger.WithError(err).WithVehicleID(id).Warn("Thumbnail generation failed")
	} else {
		resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
			Key:          fmt.Sprintf("vehicles/%s/thumbs/%s%s", id.Hex(), name, ext),
			Reader:       bytes.NewReader(thumb),
			ContentType:  contentType,
			Size:         int64(len(thumb)),
			CacheControl: "public, max-age=31536000",
		})
		if err != nil {
			s.logger.WithError(err).WithVehicleID(id).Warn("Thumbnail upload failed")
		} else {
			thumbURL = resp.URL
		}
	}

	if err := s.vehicleRepo.AddImage(ctx, id, original.URL, thumbURL); err != nil {
		if delErr := s.storage.Delete(ctx, original.Key); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to remove orphaned image")
		}
		return nil, err
	}

	return s.vehicleRepo.GetByID(ctx, id)
}
