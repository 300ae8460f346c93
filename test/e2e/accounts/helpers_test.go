//go:build e2e

package accounts_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
)

const testImageName = "qayimli-accounts-test:latest"

// TestMain builds the service image once for every test in the package.
func TestMain(m *testing.M) {
	if _, err := exec.LookPath("docker"); err != nil {
		fmt.Fprintln(os.Stdout, "docker not available, skipping e2e tests")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building accounts service image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	cleanupDockerImage()
	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/accounts/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

type service struct {
	client    *authsdk.Client
	container testcontainers.Container
}

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_KEY":            "e2e-secret-0123456789abcdef0123456789",
		"JWT_VALID_ISSUER":   "https://accounts.qayimli.test",
		"JWT_VALID_AUDIENCE": "qayimli-web",
		"FRONT_BASE_URL":     "http://front.test",
		"ENV":                "test",
		// Emails are logged at debug level, which is how tests read reset links.
		"LOG_LEVEL":  "debug",
		"LOG_FORMAT": "json",
	}
}

// relaxedLimits lifts the production rate limits for tests that make many
// requests in a row.
func relaxedLimits(env map[string]string) map[string]string {
	for _, profile := range []string{"AUTH", "MAIL", "USER", "PUBLIC"} {
		env["RATELIMIT_"+profile+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+profile+"_BURST"] = "1000"
	}
	return env
}

func startService(t *testing.T, env map[string]string) *service {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &service{
		client:    authsdk.NewClient(fmt.Sprintf("http://%s:%s", host, port.Port())),
		container: container,
	}
}

var resetLink = regexp.MustCompile(`http://front\.test/resetpassword/([A-Za-z0-9_.\-]+)`)

// lastResetToken pulls the most recent reset link out of the service logs.
func (s *service) lastResetToken(t *testing.T) string {
	t.Helper()

	var token string
	require.Eventually(t, func() bool {
		rc, err := s.container.Logs(context.Background())
		if err != nil {
			return false
		}
		defer rc.Close()

		raw, err := io.ReadAll(rc)
		if err != nil {
			return false
		}
		matches := resetLink.FindAllStringSubmatch(string(raw), -1)
		if len(matches) == 0 {
			return false
		}
		token = matches[len(matches)-1][1]
		return true
	}, 5*time.Second, 100*time.Millisecond)

	return token
}

func requireAPIError(t *testing.T, err error, status int, code string) *authsdk.APIError {
	t.Helper()
	require.Error(t, err)

	apiErr, ok := err.(*authsdk.APIError)
	require.True(t, ok, "expected *authsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
