package core

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknown       = errors.New("unknown")

	// scene graph
	ErrSelfParent       = errors.New("entity cannot parent itself")
	ErrParentCycle      = errors.New("entity cannot be parented to one of its descendants")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrComponentExists  = errors.New("entity already has a component of this type")
	ErrComponentMissing = errors.New("entity does not have requested component")

	// renderer
	ErrUnsupportedGraphicsAPI      = errors.New("unsupported graphics api")
	ErrValidationLayerMissing      = errors.New("validation layers requested, but not available")
	ErrSurfaceCreation             = errors.New("failed to create window surface")
	ErrNoSuitableDevice            = errors.New("failed to find a suitable GPU")
	ErrNoQueueFamily               = errors.New("could not find a queue for graphics and present")
	ErrNoSuitableMemoryType        = errors.New("failed to find suitable memory type")
	ErrUnsupportedLayoutTransition = errors.New("unsupported layout transition")
	ErrImageViewsNotEmpty          = errors.New("swapchain image views already created")
	ErrFenceNotWaited              = errors.New("fence reset before it was waited on")
	ErrSwapchainAcquire            = errors.New("failed to acquire swapchain image")
	ErrSwapchainPresent            = errors.New("failed to present swapchain image")

	// assets
	ErrInvalidSPIRV       = errors.New("invalid SPIR-V bytecode")
	ErrUnknownAssetType   = errors.New("unknown asset type")
	ErrAssetManagerClosed = errors.New("asset manager is closed")
)
