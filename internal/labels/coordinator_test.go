package labels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/labeldesk/internal/domain"
	"github.com/mmcdole/labeldesk/internal/store"
)

type fakeClient struct {
	resp  *domain.LabelResponse
	err   error
	calls [][]string
	block chan struct{}
}

func (f *fakeClient) RequestLabels(ctx context.Context, numbers []string) (*domain.LabelResponse, error) {
	f.calls = append(f.calls, numbers)
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

type fixture struct {
	client   *fakeClient
	registry *Registry
	fs       afero.Fs
	coord    *Coordinator
}

func newFixture(resp *domain.LabelResponse, err error) *fixture {
	fs := afero.NewMemMapFs()
	client := &fakeClient{resp: resp, err: err}
	registry := NewRegistry(store.NewMemoryStore(), nil)
	coord := NewCoordinator(client, registry, NewDirSaver(fs, "/dl"), nil)
	coord.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &fixture{client: client, registry: registry, fs: fs, coord: coord}
}

func TestRequest_NoSelection(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.coord.Request(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrNoSelection)
	assert.Empty(t, f.client.calls)
}

func TestRequest_PDF(t *testing.T) {
	f := newFixture(&domain.LabelResponse{
		StatusCode:  200,
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.4"),
	}, nil)

	out, err := f.coord.Request(context.Background(), []string{"T1", "T2"})
	require.NoError(t, err)

	assert.Equal(t, OutcomePDF, out.Kind)
	assert.Equal(t, "/dl/cdek_labels_2_orders.pdf", out.Path)
	assert.True(t, out.Requested.Contains("T1"))
	assert.True(t, out.Requested.Contains("T2"))
	assert.Equal(t, []string{"T1", "T2"}, f.registry.List())
	assert.Equal(t, [][]string{{"T1", "T2"}}, f.client.calls)

	data, err := afero.ReadFile(f.fs, out.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestRequest_ZIP(t *testing.T) {
	f := newFixture(&domain.LabelResponse{
		StatusCode:  200,
		ContentType: "application/zip",
		Body:        []byte("PK"),
	}, nil)

	out, err := f.coord.Request(context.Background(), []string{"T1"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeZIP, out.Kind)
	assert.Equal(t, "/dl/cdek_labels_batch_1700000000000.zip", out.Path)
	assert.Equal(t, []string{"T1"}, f.registry.List())
}

func TestRequest_JSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    error
		wantMarked bool
	}{
		{"message marks", `{"message":"queued"}`, nil, true},
		{"error does not mark", `{"error":"no account"}`, &domain.RequestError{}, false},
		{"neither field", `{"success":true}`, domain.ErrUnexpectedResponse, false},
		{"garbage", `not json`, domain.ErrUnexpectedResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&domain.LabelResponse{
				StatusCode:  200,
				ContentType: "application/json; charset=utf-8",
				Body:        []byte(tt.body),
			}, nil)

			out, err := f.coord.Request(context.Background(), []string{"T1"})

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, OutcomeMessage, out.Kind)
				assert.Equal(t, "queued", out.Message)
			case *domain.RequestError:
				var reqErr *domain.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, "no account", reqErr.Message)
			default:
				assert.ErrorIs(t, err, want)
			}
			assert.Equal(t, tt.wantMarked, f.registry.Load().Contains("T1"))
		})
	}
}

func TestRequest_UnsupportedContentType(t *testing.T) {
	f := newFixture(&domain.LabelResponse{
		StatusCode:  200,
		ContentType: "text/html",
		Body:        []byte("<html>"),
	}, nil)

	_, err := f.coord.Request(context.Background(), []string{"T1"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedResponse)
	assert.Contains(t, err.Error(), "text/html")
	assert.Empty(t, f.registry.List())
}

func TestRequest_HTTPError(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMessage string
		wantDetails []string
	}{
		{"json error", "application/json", `{"error":"Не выбраны трек-номера Ozon."}`, "Не выбраны трек-номера Ozon.", nil},
		{
			"json message with batch errors", "application/json",
			`{"success":false,"message":"nothing printed","errors":[{"ozon_track_chunk":"T1","error":"timeout"}]}`,
			"nothing printed", []string{"T1: timeout"},
		},
		{"raw text", "text/plain", "Bad Gateway", "Bad Gateway", nil},
		{"empty body", "", "", fallbackRejection, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&domain.LabelResponse{
				StatusCode:  502,
				ContentType: tt.contentType,
				Body:        []byte(tt.body),
			}, nil)

			_, err := f.coord.Request(context.Background(), []string{"T1"})

			var reqErr *domain.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, 502, reqErr.Status)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			assert.Equal(t, tt.wantDetails, reqErr.Details)
			assert.Contains(t, err.Error(), "502")
			assert.Empty(t, f.registry.List())
		})
	}
}

func TestRequest_TransportError(t *testing.T) {
	f := newFixture(nil, errors.Join(domain.ErrServerOffline, errors.New("dial tcp: refused")))

	_, err := f.coord.Request(context.Background(), []string{"T1"})

	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Len(t, f.client.calls, 1)
	assert.False(t, f.coord.Busy())
}

func TestRequest_InFlightGuard(t *testing.T) {
	f := newFixture(&domain.LabelResponse{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"message":"ok"}`)}, nil)
	f.client.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.Request(context.Background(), []string{"T1"})
		done <- err
	}()

	require.Eventually(t, f.coord.Busy, time.Second, time.Millisecond)

	_, err := f.coord.Request(context.Background(), []string{"T2"})
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)

	close(f.client.block)
	require.NoError(t, <-done)
	assert.False(t, f.coord.Busy())
	assert.Len(t, f.client.calls, 1)
}

type readOnlyStore struct {
	*store.KVStore
}

func (readOnlyStore) Set(string, []byte) error {
	return errors.New("read-only database")
}

func TestRequest_SavedButNotMarkedKeepsPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	client := &fakeClient{resp: &domain.LabelResponse{StatusCode: 200, ContentType: "application/pdf", Body: []byte("%PDF")}}
	registry := NewRegistry(readOnlyStore{store.NewMemoryStore()}, nil)
	coord := NewCoordinator(client, registry, NewDirSaver(fs, "/dl"), nil)

	out, err := coord.Request(context.Background(), []string{"T1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dl/cdek_labels_1_orders.pdf")
	assert.Equal(t, "/dl/cdek_labels_1_orders.pdf", out.Path)
	exists, err := afero.Exists(fs, out.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}
