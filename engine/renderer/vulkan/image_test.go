package vulkan

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/avenir/engine/core"
)

func TestLayoutTransitionUpload(t *testing.T) {
	b, err := layoutTransition(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err != nil {
		t.Fatal(err)
	}
	if b.srcAccess != 0 || b.dstAccess != vk.AccessFlags(vk.AccessTransferWriteBit) {
		t.Errorf("access masks = %d -> %d", b.srcAccess, b.dstAccess)
	}
	if b.srcStage != vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit) || b.dstStage != vk.PipelineStageFlags(vk.PipelineStageTransferBit) {
		t.Errorf("stages = %d -> %d", b.srcStage, b.dstStage)
	}
}

func TestLayoutTransitionShaderRead(t *testing.T) {
	b, err := layoutTransition(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		t.Fatal(err)
	}
	if b.srcAccess != vk.AccessFlags(vk.AccessTransferWriteBit) || b.dstAccess != vk.AccessFlags(vk.AccessShaderReadBit) {
		t.Errorf("access masks = %d -> %d", b.srcAccess, b.dstAccess)
	}
	if b.srcStage != vk.PipelineStageFlags(vk.PipelineStageTransferBit) || b.dstStage != vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit) {
		t.Errorf("stages = %d -> %d", b.srcStage, b.dstStage)
	}
}

func TestLayoutTransitionUnsupported(t *testing.T) {
	pairs := [][2]vk.ImageLayout{
		{vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal},
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal},
	}
	for _, p := range pairs {
		if _, err := layoutTransition(p[0], p[1]); !errors.Is(err, core.ErrUnsupportedLayoutTransition) {
			t.Errorf("%d -> %d: err = %v", p[0], p[1], err)
		}
	}
}
