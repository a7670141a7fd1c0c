package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/avenir/engine/assets/loaders"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/engine/renderer/metadata"
	"golang.org/x/sync/errgroup"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// ChangeFunc is called from the watcher goroutine when a watched asset is created or written.
type ChangeFunc func(path string, assetType metadata.ResourceType)

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	subscribers []ChangeFunc
	subMutex    sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create asset watcher")
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})

	go am.start()
	return am, nil
}

// Watch starts watching dir and all of its sub-directories, indexing the files found.
func (am *AssetManager) Watch(dir string) error {
	if am.closed() {
		return core.ErrAssetManagerClosed
	}
	return am.watchRecursive(dir, false)
}

// Unwatch stops watching dir and all of its sub-directories.
func (am *AssetManager) Unwatch(dir string) error {
	if am.closed() {
		return core.ErrAssetManagerClosed
	}
	return am.watchRecursive(dir, true)
}

// OnChange subscribes fn to create and write events on watched assets.
func (am *AssetManager) OnChange(fn ChangeFunc) {
	am.subMutex.Lock()
	am.subscribers = append(am.subscribers, fn)
	am.subMutex.Unlock()
}

func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) closed() bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.isClosed
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Info returns the index entry for path, if the watcher has seen it.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[filepath.Clean(path)]
	return a, ok
}

// LoadAsset loads path with the loader registered for its extension.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	path = filepath.Clean(path)
	assetType := DetermineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return nil, errors.Wrapf(core.ErrUnknownAssetType, "%s", path)
	}

	loader, ok := am.loaders[assetType]
	if !ok {
		return nil, errors.Wrapf(core.ErrUnknownAssetType, "no loader registered for %s", assetType)
	}

	res, err := loader.Load(path, assetType, params)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	core.LogDebug("loaded %s asset %s (%d bytes)", assetType, path, res.DataSize)
	return res, nil
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	loader, ok := am.loaders[DetermineAssetType(res.FullPath)]
	if !ok {
		return nil
	}
	return loader.Unload(res)
}

func (am *AssetManager) LoadShader(path string) (*metadata.ShaderResourceData, error) {
	res, err := am.LoadAsset(path, nil)
	if err != nil {
		return nil, err
	}
	shader, ok := res.Data.(*metadata.ShaderResourceData)
	if !ok {
		return nil, errors.Wrapf(core.ErrUnknownAssetType, "%s is not a shader", path)
	}
	return shader, nil
}

func (am *AssetManager) LoadImage(path string, params *metadata.ImageResourceParams) (*metadata.ImageResourceData, error) {
	res, err := am.LoadAsset(path, params)
	if err != nil {
		return nil, err
	}
	img, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, errors.Wrapf(core.ErrUnknownAssetType, "%s is not an image", path)
	}
	return img, nil
}

// LoadAll loads every path concurrently. Results keep the order of paths.
func (am *AssetManager) LoadAll(ctx context.Context, paths ...string) ([]*metadata.Resource, error) {
	out := make([]*metadata.Resource, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := am.LoadAsset(p, nil)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	name := filepath.Clean(e.Name)
	if s, err := os.Stat(name); err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := am.watchRecursive(name, false); err != nil {
				core.LogWarn("failed to watch %s: %s", name, err)
			}
		}
		return
	}

	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if t := am.handleFileEvent(name); t != metadata.ResourceTypeNone {
			am.notify(name, t)
		}
	}
	// Can't stat a deleted path, so treat it as a possible directory too.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		am.removeAsset(name)
		_ = am.fsnotify.Remove(name)
	}
}

func (am *AssetManager) notify(path string, t metadata.ResourceType) {
	am.subMutex.RLock()
	subs := make([]ChangeFunc, len(am.subscribers))
	copy(subs, am.subscribers)
	am.subMutex.RUnlock()

	core.LogDebug("asset changed: %s", path)
	for _, fn := range subs {
		fn(path, t)
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		walkPath = filepath.Clean(walkPath)
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		if unWatch {
			am.removeAsset(walkPath)
		} else {
			am.handleFileEvent(walkPath)
		}
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := DetermineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func DetermineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".webp", ".tif", ".tiff":
		return metadata.ResourceTypeImage
	case ".bin":
		return metadata.ResourceTypeBinary
	default:
		return metadata.ResourceTypeNone
	}
}
