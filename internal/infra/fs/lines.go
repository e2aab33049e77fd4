package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	logging "me-linker/internal/infra/log"
	"me-linker/internal/wallets"
)

type numberedLine struct {
	no   int // 1-based line number in the file
	text string
}

// readNumberedLines keeps the first occurrence of every trimmed, non-empty line.
func readNumberedLines(path string) ([]numberedLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []numberedLine
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for no := 1; scanner.Scan(); no++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, numberedLine{no: no, text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// ReadLines returns the trimmed, non-empty, de-duplicated lines of a file in order.
func ReadLines(path string) ([]string, error) {
	numbered, err := readNumberedLines(path)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(numbered))
	for _, l := range numbered {
		lines = append(lines, l.text)
	}
	return lines, nil
}

// ReadProxies loads proxy URLs, one per line. Lines without a scheme are treated as http.
func ReadProxies(path string) ([]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	proxies := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, "://") {
			line = "http://" + line
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

// WalletFile is the list file of a kind, e.g. data/accounts/evm.txt.
func WalletFile(dir string, kind wallets.FileKind) string {
	return filepath.Join(dir, string(kind)+".txt")
}

// ReadWallets parses every line of the kind's list file. Lines that fail to
// parse are skipped and reported by line number only.
func ReadWallets(dir string, kind wallets.FileKind) ([]wallets.Wallet, error) {
	path := WalletFile(dir, kind)
	lines, err := readNumberedLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]wallets.Wallet, 0, len(lines))
	for _, line := range lines {
		w, err := wallets.FromLine(kind, line.text)
		if err != nil {
			logging.LogWarn("Skipping invalid wallet line",
				zap.String("file", path),
				zap.Int("line", line.no),
				zap.String("reason", err.Error()))
			continue
		}
		out = append(out, w)
	}
	logging.LogDebug("Loaded wallets", zap.String("file", path), zap.Int("count", len(out)))
	return out, nil
}
