package office

import (
	"fmt"
	"sync"

	"github.com/unidoc/unioffice/common/license"
)

var (
	mu      sync.Mutex
	applied string
)

// SetLicense 设置 unioffice 计量许可证；空 key 不做处理，同一个 key 只设置一次
func SetLicense(key string) error {
	if key == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if applied == key {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set unioffice license: %w", err)
	}
	applied = key
	return nil
}
