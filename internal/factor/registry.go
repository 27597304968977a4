package factor

import (
	"fmt"
	"sort"
	"sync"

	"factorbench/internal/table"
)

// Func 从行情数据集计算因子值表，行为日期、列为标的。
type Func func(data *Dataset) *table.Frame

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Func)
)

// Register 注册因子，重名时覆盖旧实现。
func Register(name string, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// Get 按名字查找因子。
func Get(name string) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("未注册的因子: %s", name)
	}
	return fn, nil
}

// Names 返回全部已注册因子名，按字典序排列。
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
