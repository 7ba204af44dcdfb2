// SPDX-License-Identifier: MPL-2.0

package props

import "strings"

// Property keys understood by the analysis engine. Key names are a
// compatibility contract with the engine.
const (
	Skip    = "sonar.skip"
	ScanAll = "sonar.gradle.scanAll"
	Verbose = "sonar.verbose"

	HostURL      = "sonar.host.url"
	Token        = "sonar.token"
	Login        = "sonar.login"
	Password     = "sonar.password"
	Organization = "sonar.organization"
	scmPrefix    = "sonar.scm."

	ProjectKey         = "sonar.projectKey"
	ModuleKey          = "sonar.moduleKey"
	Modules            = "sonar.modules"
	ProjectName        = "sonar.projectName"
	ProjectDescription = "sonar.projectDescription"
	ProjectVersion     = "sonar.projectVersion"
	ProjectBaseDir     = "sonar.projectBaseDir"
	WorkingDirectory   = "sonar.working.directory"

	Sources        = "sonar.sources"
	Tests          = "sonar.tests"
	SourceEncoding = "sonar.sourceEncoding"

	JavaSource        = "sonar.java.source"
	JavaTarget        = "sonar.java.target"
	JavaEnablePreview = "sonar.java.enablePreview"
	JavaJdkHome       = "sonar.java.jdkHome"
	JavaBinaries      = "sonar.java.binaries"
	JavaLibraries     = "sonar.java.libraries"
	JavaTestBinaries  = "sonar.java.test.binaries"
	JavaTestLibraries = "sonar.java.test.libraries"
	GroovyBinaries    = "sonar.groovy.binaries"

	KotlinGradleProjectRoot = "sonar.kotlin.gradleProjectRoot"

	JUnitReportPaths       = "sonar.junit.reportPaths"
	JacocoXMLReportPaths   = "sonar.coverage.jacoco.xmlReportPaths"
	AndroidLintReportPaths = "sonar.androidLint.reportPaths"

	AndroidDetected  = "sonar.android.detected"
	AndroidMinSdkMin = "sonar.android.minsdkversion.min"
	AndroidMinSdkMax = "sonar.android.minsdkversion.max"

	// Deprecated aliases still read by older engines.
	Binaries            = "sonar.binaries"
	Libraries           = "sonar.libraries"
	JUnitReportsPath    = "sonar.junit.reportsPath"
	SurefireReportsPath = "sonar.surefire.reportsPath"
)

var rootOnly = map[string]bool{
	ProjectKey:       true,
	HostURL:          true,
	Token:            true,
	Login:            true,
	Password:         true,
	Organization:     true,
	WorkingDirectory: true,
	Verbose:          true,
	ScanAll:          true,
	Skip:             true,
}

var moduleLocal = map[string]bool{
	ProjectName:        true,
	ProjectDescription: true,
	ProjectVersion:     true,
	ModuleKey:          true,
	ProjectBaseDir:     true,
	Modules:            true,
	Sources:            true,
	Tests:              true,
	Binaries:           true,
	Libraries:          true,
	JavaBinaries:       true,
	JavaLibraries:      true,
	JavaTestBinaries:   true,
	JavaTestLibraries:  true,
	GroovyBinaries:     true,
}

// IsRootOnly reports whether key exists once for the whole analysis and is
// never namespaced by module.
func IsRootOnly(key string) bool {
	return rootOnly[key] || strings.HasPrefix(key, scmPrefix)
}

// IsModuleLocal reports whether key describes a single module and must not
// be inherited by its descendants.
func IsModuleLocal(key string) bool {
	return moduleLocal[key]
}

// Prefixed namespaces key with a dotted module id. The empty id (root)
// leaves the key unchanged.
func Prefixed(id, key string) string {
	if id == "" {
		return key
	}
	return id + "." + key
}
