package languages

import (
	"os"
	"path/filepath"

	"github.com/codelens-dev/codelens-gateway/internal/model"
)

// Java launches the Eclipse JDT language server with a fixed JVM heap/GC
// flag set and a workspace state directory under the OS temp dir. The
// directory name is fixed (codelens-jdtls-workspace), so every workspace
// uses the same jdtls index state directory.
func Java() base {
	dataDir := filepath.Join(os.TempDir(), "codelens-jdtls-workspace")
	return base{
		kind:    model.Java,
		markers: []string{"gradlew", "mvnw", ".git"},
		command: "jdtls",
		args: []string{
			"-Declipse.application=org.eclipse.jdt.ls.core.id1",
			"-Dosgi.bundles.defaultStartLevel=4",
			"-Declipse.product=org.eclipse.jdt.ls.core.product",
			"-Xmx1G",
			"-data", dataDir,
		},
	}
}
