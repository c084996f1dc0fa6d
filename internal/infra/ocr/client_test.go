package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const bufSize = 1024 * 1024

// recognizeServer is the server half of the Struct-based OCR service.
type recognizeServer interface {
	Recognize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func recognizeHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	return srv.(recognizeServer).Recognize(ctx, in)
}

var ocrServiceDesc = grpc.ServiceDesc{
	ServiceName: "ocr.v1.OCRService",
	HandlerType: (*recognizeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recognize", Handler: recognizeHandler},
	},
	Metadata: "ocr.proto",
}

// mockOCRServer implements recognizeServer for testing.
type mockOCRServer struct {
	recognizeFn func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	mu          sync.Mutex
	lastRequest *structpb.Struct
}

func (m *mockOCRServer) last() *structpb.Struct {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func (m *mockOCRServer) Recognize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m.mu.Lock()
	m.lastRequest = req
	m.mu.Unlock()
	if m.recognizeFn != nil {
		return m.recognizeFn(ctx, req)
	}
	return structpb.NewStruct(map[string]any{"text": "  recognised words  ", "confidence": 0.9})
}

// setupTestServer creates a bufconn-based gRPC server for testing.
func setupTestServer(t *testing.T, server *mockOCRServer) *grpc.ClientConn {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	s.RegisterService(&ocrServiceDesc, server)

	go func() {
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Logf("Server error: %v", err)
		}
	}()

	dialer := func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}

	conn, err := grpc.NewClient(
		"passthrough://bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Stop()
		_ = lis.Close()
	})
	return conn
}

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Address = "bufnet"
	cfg.DialTimeout = time.Second
	cfg.RequestTimeout = 5 * time.Second
	cfg.Breaker.Name = "ocr-test"
	cfg.Breaker.MaxRequests = 1
	cfg.Breaker.Interval = time.Minute
	cfg.Breaker.Timeout = time.Minute
	cfg.Breaker.FailureThreshold = 0.5
	cfg.Breaker.MinRequests = 2
	return cfg
}

func createTestRecognizer(t *testing.T, server *mockOCRServer) *GRPCRecognizer {
	conn := setupTestServer(t, server)
	r := New(conn, validTestConfig(), nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

/* ───────────────────────────── Recognize ───────────────────────────── */

func TestGRPCRecognizer_Recognize_Success(t *testing.T) {
	server := &mockOCRServer{}
	r := createTestRecognizer(t, server)

	got, err := r.Recognize(context.Background(), []byte("fake-png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "recognised words", got)

	req := server.last()
	require.NotNil(t, req)
	fields := req.GetFields()
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake-png")), fields["image"].GetStringValue())
	assert.Equal(t, "image/png", fields["content_type"].GetStringValue())
	assert.Equal(t, "eng+spa", fields["languages"].GetStringValue())
}

func TestGRPCRecognizer_Recognize_EmptyImage(t *testing.T) {
	r := createTestRecognizer(t, &mockOCRServer{})

	_, err := r.Recognize(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestGRPCRecognizer_Recognize_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		code    codes.Code
		wantErr error
	}{
		{name: "invalid argument", code: codes.InvalidArgument, wantErr: ErrInvalidImage},
		{name: "deadline exceeded", code: codes.DeadlineExceeded, wantErr: ErrTimeout},
		{name: "unavailable", code: codes.Unavailable, wantErr: ErrOCRUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &mockOCRServer{
				recognizeFn: func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
					return nil, status.Error(tt.code, "boom")
				},
			}
			r := createTestRecognizer(t, server)

			_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGRPCRecognizer_Recognize_MalformedResponse(t *testing.T) {
	server := &mockOCRServer{
		recognizeFn: func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return structpb.NewStruct(map[string]any{"confidence": 0.2})
		},
	}
	r := createTestRecognizer(t, server)

	_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGRPCRecognizer_CircuitBreakerOpens(t *testing.T) {
	server := &mockOCRServer{
		recognizeFn: func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return nil, status.Error(codes.Unavailable, "down")
		},
	}
	r := createTestRecognizer(t, server)

	for i := 0; i < 2; i++ {
		_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
		require.ErrorIs(t, err, ErrOCRUnavailable)
	}

	_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, "open", r.State())
}

func TestGRPCRecognizer_RejectedImagesDoNotTripBreaker(t *testing.T) {
	server := &mockOCRServer{
		recognizeFn: func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return nil, status.Error(codes.InvalidArgument, "not an image")
		},
	}
	r := createTestRecognizer(t, server)

	for i := 0; i < 5; i++ {
		_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
		require.ErrorIs(t, err, ErrInvalidImage)
	}
	assert.Equal(t, "closed", r.State())
}

/* ───────────────────────────── Constructors ───────────────────────────── */

func TestDial(t *testing.T) {
	cfg := validTestConfig()
	cfg.Enabled = false
	_, err := Dial(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrOCRDisabled)

	cfg = validTestConfig()
	cfg.Address = "127.0.0.1:1"
	cfg.DialTimeout = 200 * time.Millisecond
	_, err = Dial(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}

func TestNoopRecognizer(t *testing.T) {
	var r Recognizer = NewNoopRecognizer()
	_, err := r.Recognize(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, ErrOCRDisabled)
	assert.Equal(t, "disabled", NewNoopRecognizer().State())
}
