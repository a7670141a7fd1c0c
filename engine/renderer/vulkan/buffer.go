package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// VulkanBuffer is a buffer and the memory bound to it. Both are created and destroyed together.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags

	// Mapped is non nil while the memory is persistently mapped.
	Mapped unsafe.Pointer
}

func NewBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{Size: size, Usage: usage}
	device := context.Device.LogicalDevice

	err := context.lockPool.SafeCall(BufferManagement, func() error {
		bufferInfo := vk.BufferCreateInfo{
			SType:       vk.StructureTypeBufferCreateInfo,
			Size:        size,
			Usage:       usage,
			SharingMode: vk.SharingModeExclusive,
		}
		var handle vk.Buffer
		if res := vk.CreateBuffer(device, &bufferInfo, context.Allocator, &handle); res != vk.Success {
			return vulkanError("vkCreateBuffer", res)
		}
		buffer.Handle = handle

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(device, handle, &requirements)
		requirements.Deref()

		memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
		if err != nil {
			return err
		}
		allocInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: memoryType,
		}
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(device, &allocInfo, context.Allocator, &memory); res != vk.Success {
			return vulkanError("vkAllocateMemory", res)
		}
		buffer.Memory = memory

		if res := vk.BindBufferMemory(device, handle, memory, 0); res != vk.Success {
			return vulkanError("vkBindBufferMemory", res)
		}
		return nil
	})
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

// Map maps the whole buffer and keeps it mapped until Destroy.
func (b *VulkanBuffer) Map(context *VulkanContext) (unsafe.Pointer, error) {
	if b.Mapped != nil {
		return b.Mapped, nil
	}
	var data unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, b.Size, 0, &data); res != vk.Success {
		return nil, vulkanError("vkMapMemory", res)
	}
	b.Mapped = data
	return data, nil
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	if b.Mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	b.Mapped = nil
}

// Write copies data into host visible memory, mapping it for the duration if needed.
func (b *VulkanBuffer) Write(context *VulkanContext, data []byte) error {
	if vk.DeviceSize(len(data)) > b.Size {
		return errors.Newf("write of %d bytes into a %d byte buffer", len(data), b.Size)
	}
	if b.Mapped != nil {
		vk.Memcopy(b.Mapped, data)
		return nil
	}
	ptr, err := b.Map(context)
	if err != nil {
		return err
	}
	vk.Memcopy(ptr, data)
	b.Unmap(context)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	b.Unmap(context)
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(device, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
}

func newStagingBuffer(context *VulkanContext, data []byte) (*VulkanBuffer, error) {
	staging, err := NewBuffer(context,
		vk.DeviceSize(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	if err := staging.Write(context, data); err != nil {
		staging.Destroy(context)
		return nil, err
	}
	return staging, nil
}

// UploadBuffer creates a device local buffer holding data. The staging copy finishes before this returns.
func UploadBuffer(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("upload of an empty buffer")
	}
	staging, err := newStagingBuffer(context, data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	size := vk.DeviceSize(len(data))
	buffer, err := NewBuffer(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	err = runSingleUse(context, func(cmd vk.CommandBuffer) {
		region := vk.BufferCopy{SrcOffset: 0, DstOffset: 0, Size: size}
		vk.CmdCopyBuffer(cmd, staging.Handle, buffer.Handle, 1, []vk.BufferCopy{region})
	})
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}
