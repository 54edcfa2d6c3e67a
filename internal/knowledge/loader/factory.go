package loader

import (
	"fmt"
	"sort"

	kbtypes "github.com/lk2023060901/ai-notebook-backend/internal/knowledge/types"
)

// Factory 按文件类型选择加载器
type Factory struct {
	loaders map[kbtypes.FileType]Loader
}

// NewFactory 创建注册了全部内置加载器的工厂
func NewFactory() *Factory {
	f := &Factory{loaders: make(map[kbtypes.FileType]Loader)}

	f.Register(NewTextLoader())
	f.Register(NewMarkdownLoader())
	f.Register(NewPDFLoader())
	f.Register(NewDOCXLoader())
	f.Register(NewJSONLoader())

	return f
}

// Register 注册加载器，同类型后注册的覆盖先注册的
func (f *Factory) Register(l Loader) {
	for _, ft := range l.SupportedTypes() {
		f.loaders[ft] = l
	}
}

// CreateLoader 根据文件类型返回加载器
func (f *Factory) CreateLoader(fileType kbtypes.FileType) (Loader, error) {
	l, ok := f.loaders[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
	return l, nil
}

// SupportedTypes 返回所有支持的文件类型（排序后）
func (f *Factory) SupportedTypes() []kbtypes.FileType {
	types := make([]kbtypes.FileType, 0, len(f.loaders))
	for ft := range f.loaders {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
