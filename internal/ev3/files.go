package ev3

import (
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/NStrijbosch/pybricksdev/internal/transport"
)

// fileChannel is the SFTP capability of a Handle. The sftp protocol
// has no working-directory state, so the channel tracks one
// client-side and resolves relative paths against it.
type fileChannel struct {
	client *sftp.Client

	mu   sync.Mutex
	cwd  string
	done bool
}

var _ transport.FileChannel = (*fileChannel)(nil)

func openFileChannel(sshClient *ssh.Client) (*fileChannel, error) {
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, err
	}
	cwd, err := client.Getwd()
	if err != nil {
		client.Close()
		return nil, err
	}
	return &fileChannel{client: client, cwd: cwd}, nil
}

func (c *fileChannel) Exists(p string) (bool, error) {
	_, err := c.client.Stat(c.resolve(p))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (c *fileChannel) Mkdir(p string) error {
	return c.client.Mkdir(c.resolve(p))
}

func (c *fileChannel) Put(r io.Reader, remotePath string) error {
	f, err := c.client.Create(c.resolve(remotePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *fileChannel) Getwd() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cwd, nil
}

func (c *fileChannel) Chdir(p string) error {
	resolved := c.resolve(p)
	info, err := c.client.Stat(resolved)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("ev3: not a directory: %s", resolved)
	}
	c.mu.Lock()
	c.cwd = resolved
	c.mu.Unlock()
	return nil
}

func (c *fileChannel) Close() error {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()
	return c.client.Close()
}

func (c *fileChannel) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *fileChannel) resolve(p string) string {
	if path.IsAbs(p) {
		return p
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return path.Join(c.cwd, p)
}
