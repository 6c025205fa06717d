package loader

import (
	"bytes"
	"io"
	"net/url"

	"github.com/stretchr/testify/mock"
)

// MockLoader is a testify mock of Loader for engine tests. A missing reader
// or URL return value yields nil.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) GetSourceURL() *url.URL {
	u, _ := m.Called().Get(0).(*url.URL)
	return u
}

func (m *MockLoader) GetReader() (io.ReadCloser, error) {
	args := m.Called()
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// NewMockLoaderWithContent returns a MockLoader whose single reader yields
// content, named by a provider://mock URL.
func NewMockLoaderWithContent(content []byte) *MockLoader {
	u := inlineURL(content)
	u.Host = "mock"

	m := new(MockLoader)
	m.On("GetReader").Return(io.NopCloser(bytes.NewReader(content)), nil)
	m.On("GetSourceURL").Return(u)
	return m
}
