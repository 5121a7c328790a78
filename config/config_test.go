package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plainkv.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)
	return path
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	c, err := Load(path, false)
	assert.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(path, true)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("PLAINKV_TEST_SECRET", "s3cr3t")
	path := writeYAML(t, `
db: /var/lib/app/settings.txt
delimiter: "::"
atomic: true
log_dir: /var/log/plainkv
s3:
  endpoint: s3.example.com
  access: key
  secret: ${PLAINKV_TEST_SECRET}
  bucket: backups
`)
	c, err := Load(path, true)
	assert.NoError(t, err)
	assert.Equal(t, "/var/lib/app/settings.txt", c.Path)
	assert.Equal(t, "::", c.Delimiter)
	assert.True(t, c.Atomic)
	assert.False(t, c.Verbose)
	assert.Equal(t, "/var/log/plainkv", c.LogDir)
	assert.True(t, c.HasS3())

	mc := c.MinioConfig()
	assert.Equal(t, "s3cr3t", mc.Secret)
	assert.Equal(t, "backups", mc.Bucket)
	assert.False(t, mc.Insecure)
	assert.NoError(t, mc.Validate())
}

func TestLoadDefaults(t *testing.T) {
	path := writeYAML(t, "verbose: true\n")
	c, err := Load(path, true)
	assert.NoError(t, err)
	assert.Equal(t, DefaultPath, c.Path)
	assert.Equal(t, DefaultDelimiter, c.Delimiter)
	assert.True(t, c.Verbose)
	assert.False(t, c.HasS3())
}

func TestLoadErrors(t *testing.T) {
	tests := []string{
		"delimiter: \"\"\n",
		"db: \"\"\n",
		"s3:\n  secret: ${PLAINKV_SURELY_NOT_SET}\n",
		"db: [not, a, string\n",
	}
	for _, content := range tests {
		_, err := Load(writeYAML(t, content), true)
		assert.Error(t, err, "content: %q", content)
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("FOO", "bar")
	got, err := ExpandEnvStrict("hello ${FOO} world")
	assert.NoError(t, err)
	assert.Equal(t, "hello bar world", got)

	_, err = ExpandEnvStrict("hello ${PLAINKV_SURELY_NOT_SET}")
	assert.Error(t, err)
}

func TestExpandEnvKeepsDollar(t *testing.T) {
	t.Setenv("FOO", "bar")
	tests := []string{
		"a$b", "a$b",
		"pa$word", "pa$word",
		"$$", "$$",
		"$FOO", "$FOO",
		"$FOO ${FOO}", "$FOO bar",
		"${FOO}$", "bar$",
	}
	for i := 0; i < len(tests); i += 2 {
		got, err := ExpandEnvStrict(tests[i])
		assert.NoError(t, err)
		assert.Equal(t, tests[i+1], got, "input: %q", tests[i])
	}

	c, err := Parse([]byte("delimiter: \"a$b\"\ns3:\n  secret: \"pa$word\"\n"))
	assert.NoError(t, err)
	assert.Equal(t, "a$b", c.Delimiter)
	assert.Equal(t, "pa$word", c.S3.Secret)
}
