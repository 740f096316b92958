package file

import (
	"fmt"
	"net"
	"strings"

	"golang-kvconfig/internal/port"

	"github.com/sirupsen/logrus"
)

// ResolvConfPath is the resolver file rewritten when an interface carries DNS servers.
const ResolvConfPath = "/etc/resolv.conf"

// EnsureResolvConf writes servers as nameserver lines to path unless it already holds exactly that.
// The file is rewritten in place since it is often a symlink or a bind mount.
func EnsureResolvConf(fm port.FileManager, path string, servers []net.IP, logger *logrus.Entry) error {
	var b strings.Builder
	b.WriteString("# Generated by kvconf\n")
	names := make([]string, 0, len(servers))
	for _, dns := range servers {
		fmt.Fprintf(&b, "nameserver %s\n", dns)
		names = append(names, dns.String())
	}
	content := b.String()

	if current, err := fm.ReadFile(path); err == nil && string(current) == content {
		logger.Debug("DNS configuration already up to date")
		return nil
	}

	if err := fm.OverwriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	logger.WithField("dns_servers", strings.Join(names, ", ")).Info("Updated resolver configuration")
	return nil
}
