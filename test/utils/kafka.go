// test/utils/kafka.go
package testutils

import (
	"bytes"
	"net"
	"os/exec"
	"testing"
	"time"
)

const KafkaBroker = "localhost:9092"

// CreateKafkaTopic creates topic in the dockerized broker and skips the test
// when no broker is running.
func CreateKafkaTopic(t *testing.T, topic string) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", KafkaBroker, 3*time.Second)
	if err != nil {
		t.Skipf("Kafka unavailable: %v", err)
	}
	conn.Close()

	cmd := exec.Command(
		"docker", "exec", "kafka",
		"kafka-topics", "--create", "--if-not-exists",
		"--topic", topic,
		"--bootstrap-server", KafkaBroker,
		"--replication-factor", "1",
		"--partitions", "1",
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		t.Fatalf("create topic %s: %v\n%s", topic, err, out.String())
	}

	t.Logf("topic %s created", topic)
}
