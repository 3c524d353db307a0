// Package spawner implements the Server Spawner (spec.md §4.5): launches a
// new server process, detached from standard streams, returning its id.
package spawner

import "os"

// deploymentRootVar is this module's concrete choice for the
// "deployment-specific runtime-installation variable" spec.md §4.5/§6
// names but does not fix a name for.
const deploymentRootVar = "CSC_DEPLOYMENT_ROOT"

// Spawn launches expectedImagePath as the server process: no inherited
// standard streams, normal priority, no console window, working directory
// set to the directory of expectedImagePath. Returns ok=false on failure
// (spec.md §4.5).
func Spawn(expectedImagePath string) (pid int, ok bool) {
	env := deploymentOverrides(os.Environ())
	return spawn(expectedImagePath, env)
}

// deploymentOverrides appends deployment-root-derived runtime-installation
// variables to env, only when CSC_DEPLOYMENT_ROOT is present in the
// environment (spec.md §4.5).
func deploymentOverrides(env []string) []string {
	root, present := os.LookupEnv(deploymentRootVar)
	if !present || root == "" {
		return env
	}
	return append(env,
		"CSC_RUNTIME_ROOT="+root,
		"CSC_SHARED_FRAMEWORKS="+root+string(os.PathSeparator)+"shared",
	)
}
