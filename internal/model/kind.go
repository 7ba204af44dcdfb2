// SPDX-License-Identifier: MPL-2.0

package model

import (
	"strings"

	"github.com/scanbridge/scanbridge/internal/snapshot"
)

const (
	// KindNone is a pure aggregation module without a language plugin.
	KindNone Kind = iota
	// KindJVM is a Java (or Groovy) module.
	KindJVM
	// KindKotlinJVM is a Kotlin/JVM module, possibly mixed with Java.
	KindKotlinJVM
	// KindKotlinMultiplatform is a Kotlin multiplatform module.
	KindKotlinMultiplatform
	KindAndroidApplication
	KindAndroidLibrary
	// KindAndroidTest is a standalone Android instrumentation test module.
	KindAndroidTest
	KindAndroidDynamicFeature
)

const (
	CapJava Caps = 1 << iota
	CapGroovy
	CapKotlin
	CapAndroid
	CapJacoco
	// CapKotlinDSL marks modules whose build script is a .kts file.
	CapKotlinDSL
)

// Plugin ids recognized when classifying a module.
const (
	PluginJava                  = "java"
	PluginJavaLibrary           = "java-library"
	PluginApplication           = "application"
	PluginGroovy                = "groovy"
	PluginKotlinJVM             = "org.jetbrains.kotlin.jvm"
	PluginKotlinMultiplatform   = "org.jetbrains.kotlin.multiplatform"
	PluginKotlinAndroid         = "org.jetbrains.kotlin.android"
	PluginAndroidApplication    = "com.android.application"
	PluginAndroidLibrary        = "com.android.library"
	PluginAndroidTest           = "com.android.test"
	PluginAndroidDynamicFeature = "com.android.dynamic-feature"
	PluginJacoco                = "jacoco"
)

type (
	// Kind is the closed set of module types the analyzer understands.
	Kind int

	// Caps are capability flags layered on top of a Kind.
	Caps uint8
)

var kindNames = [...]string{
	KindNone:                  "none",
	KindJVM:                   "jvm",
	KindKotlinJVM:             "kotlin-jvm",
	KindKotlinMultiplatform:   "kotlin-multiplatform",
	KindAndroidApplication:    "android-application",
	KindAndroidLibrary:        "android-library",
	KindAndroidTest:           "android-test",
	KindAndroidDynamicFeature: "android-dynamic-feature",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsAndroid reports whether sources come from Android variants.
func (k Kind) IsAndroid() bool {
	switch k {
	case KindAndroidApplication, KindAndroidLibrary, KindAndroidTest, KindAndroidDynamicFeature:
		return true
	default:
		return false
	}
}

// Has reports whether every flag in f is set.
func (c Caps) Has(f Caps) bool {
	return c&f == f
}

func (c Caps) String() string {
	names := []struct {
		flag Caps
		name string
	}{
		{CapJava, "java"},
		{CapGroovy, "groovy"},
		{CapKotlin, "kotlin"},
		{CapAndroid, "android"},
		{CapJacoco, "jacoco"},
		{CapKotlinDSL, "kotlin-dsl"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// Classify derives the module kind and capabilities from the project's
// applied plugins and build file. Android plugins take precedence over
// Kotlin, Kotlin over plain Java.
func Classify(p *snapshot.Project) (Kind, Caps) {
	var caps Caps
	if p.HasPlugin(PluginJava, PluginJavaLibrary, PluginApplication, PluginGroovy) {
		caps |= CapJava
	}
	if p.HasPlugin(PluginGroovy) {
		caps |= CapGroovy
	}
	if p.HasPlugin(PluginKotlinJVM, PluginKotlinMultiplatform, PluginKotlinAndroid) {
		caps |= CapKotlin
	}
	if p.HasPlugin(PluginJacoco) {
		caps |= CapJacoco
	}
	if strings.HasSuffix(p.BuildFile, ".kts") {
		caps |= CapKotlinDSL
	}

	kind := KindNone
	switch {
	case p.HasPlugin(PluginAndroidApplication):
		kind = KindAndroidApplication
	case p.HasPlugin(PluginAndroidLibrary):
		kind = KindAndroidLibrary
	case p.HasPlugin(PluginAndroidTest):
		kind = KindAndroidTest
	case p.HasPlugin(PluginAndroidDynamicFeature):
		kind = KindAndroidDynamicFeature
	case p.HasPlugin(PluginKotlinMultiplatform):
		kind = KindKotlinMultiplatform
	case p.HasPlugin(PluginKotlinJVM):
		kind = KindKotlinJVM
	case caps.Has(CapJava):
		kind = KindJVM
	}
	if kind.IsAndroid() {
		caps |= CapAndroid | CapJava
	}
	return kind, caps
}
