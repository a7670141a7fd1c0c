package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
)

const spirvMagic uint32 = 0x07230203

type ShaderLoader struct{}

// Load reads a compiled SPIR-V module and checks its header.
func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read shader %s", path)
	}
	shader, err := ParseSPIRV(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	return &metadata.Resource{
		Name:     resourceName(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     shader,
	}, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}

// ParseSPIRV validates the size and magic number of a SPIR-V blob.
func ParseSPIRV(data []byte) (*metadata.ShaderResourceData, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "size %d is not a non-zero multiple of 4", len(data))
	}
	code := bytesToBytecode(data)
	if code[0] != spirvMagic {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "bad magic 0x%08x", code[0])
	}
	return &metadata.ShaderResourceData{
		Bytes: data,
		Code:  code,
	}, nil
}

func resourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
