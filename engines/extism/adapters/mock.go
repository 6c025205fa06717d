package adapters

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
	"github.com/stretchr/testify/mock"
)

// MockCompiledPlugin is a testify mock of CompiledPlugin.
type MockCompiledPlugin struct {
	mock.Mock
}

func (m *MockCompiledPlugin) Instance(
	ctx context.Context,
	config extismSDK.PluginInstanceConfig,
) (PluginInstance, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(PluginInstance), args.Error(1)
}

func (m *MockCompiledPlugin) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockPluginInstance is a testify mock of PluginInstance.
type MockPluginInstance struct {
	mock.Mock
}

func (m *MockPluginInstance) CallWithContext(
	ctx context.Context,
	name string,
	data []byte,
) (uint32, []byte, error) {
	args := m.Called(ctx, name, data)
	return args.Get(0).(uint32), bytesArg(args.Get(1)), args.Error(2)
}

func (m *MockPluginInstance) FunctionExists(name string) bool {
	return m.Called(name).Bool(0)
}

func (m *MockPluginInstance) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func bytesArg(v any) []byte {
	if v == nil {
		return nil
	}
	return v.([]byte)
}
