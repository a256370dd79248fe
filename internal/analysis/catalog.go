package analysis

import "strconv"

// classFileOffset converts a class file major version to its Java release.
const classFileOffset = 44

var defaultLibrary = &Library{
	Detectors: []Detector{
		{Title: "Minecraft Crash Report", Match: Line(`---- Minecraft Crash Report ----`)},
		{Title: "Purpur Server Log", Match: Line(`This server is running Purpur version`)},
		{Title: "Paper Server Log", Match: Line(`This server is running Paper version`)},
		{Title: "Spigot Server Log", Match: Line(`This server is running CraftBukkit version \S*Spigot`)},
		{Title: "Fabric Log", Match: Line(`Loading Minecraft \S+ with Fabric Loader`)},
		{Title: "Forge Log", Match: Line(`MinecraftForge v\d|ModLauncher running|Forge Mod Loader`)},
		{Title: "Vanilla Server Log", Match: Line(`Starting minecraft server version`)},
	},

	Information: []InformationRule{
		{
			Label: "Minecraft version",
			Match: AnyOf(
				Line(`Starting minecraft server version (\S+)`),
				Line(`Loading Minecraft (\S+) with Fabric Loader`),
				Line(`Minecraft Version: (\S+)`),
			),
		},
		{
			Label: "Server software",
			Match: Line(`This server is running (\S+) version (\S+)`),
			Value: "$1 $2",
		},
		{
			Label: "Fabric Loader version",
			Match: Line(`with Fabric Loader (\S+)`),
		},
		{
			Label: "Java version",
			Match: AnyOf(
				Line(`Java Version: ([^,\s]+)`),
				Line(`Java is .*version (\d[\w.+-]*)`),
			),
		},
		{
			Label: "Mods",
			Match: AnyOf(
				Line(`Loading (\d+) mods:`),
				Line(`Found (\d+) mods? to load`),
			),
		},
	},

	Signatures: []Signature{
		{
			ID: "out-of-memory",
			Match: AnyOf(
				Line(`java\.lang\.OutOfMemoryError`),
				Line(`(?i)\bout of memory\b`),
			),
			Message: "The server ran out of memory.",
			Solutions: []string{
				"Raise the maximum heap size with the '-Xmx' start flag, for example '-Xmx4G'.",
				"Lower 'view-distance' or remove memory-heavy mods and plugins.",
			},
		},
		{
			ID:      "cant-keep-up",
			Match:   Line(`Can't keep up!`),
			Message: "The server is overloaded and skipping ticks.",
			Solutions: []string{
				"Lower 'view-distance' and 'simulation-distance' in 'server.properties'.",
				"Profile the server with 'spark' to find what uses the tick time.",
			},
		},
		{
			ID: "port-in-use",
			Match: AnyOf(
				Line(`\*+ FAILED TO BIND TO PORT!`),
				Line(`java\.net\.BindException: Address already in use`),
			),
			Message: "The server could not bind its port because another process is already using it.",
			Solutions: []string{
				"Stop the other server that is running on this port.",
				"Change 'server-port' in 'server.properties' to a free port.",
			},
		},
		{
			ID:      "eula-not-accepted",
			Match:   Line(`You need to agree to the EULA in order to run the server`),
			Message: "The Minecraft EULA has not been accepted.",
			Solutions: []string{
				"Open 'eula.txt' and change 'eula=false' to 'eula=true'.",
			},
		},
		{
			ID: "plugin-missing-dependency",
			Match: FollowedBy(
				`Could not load '([^']+)' in folder '[^']+'`,
				`UnknownDependencyException: (.+)$`,
				5,
			),
			Message: "The plugin '$1' could not be loaded because a dependency is missing.",
			Solutions: []string{
				"Install the missing dependency: $2",
				"Remove '$1' if you do not need it.",
			},
		},
		{
			ID: "fabric-missing-dependency",
			Match: AnyOf(
				Line(`Mod '([^']+)' \([^)]+\) \S+ requires .*?of mod '([^']+)' \([^)]+\), which is missing!`),
				Line(`Mod '([^']+)' \([^)]+\) \S+ requires any version of ([\w.-]+), which is missing!`),
			),
			Message: "The mod '$1' requires '$2', which is not installed.",
			Solutions: []string{
				"Install a compatible version of '$2'.",
				"Remove '$1' from the mods folder.",
			},
		},
		{
			ID: "unsupported-class-version",
			Match: MapCaptures(
				Line(`UnsupportedClassVersionError: .*class file version (\d+)\.\d+\), this version of the Java Runtime only recognizes class file versions up to (\d+)\.\d+`),
				classVersionsToJava,
			),
			Message: "A plugin or mod requires Java $1, but the server runs Java $2.",
			Solutions: []string{
				"Start the server with Java $1 or newer.",
				"Use a release of the plugin or mod that supports Java $2.",
			},
		},
		{
			ID: "ticking-entity",
			Match: Sequence(0,
				`Description: Ticking entity`,
				`Entity Type: ([\w:.-]+)`,
				`Entity's Exact location: (-?[\d.]+), (-?[\d.]+), (-?[\d.]+)`,
			),
			Message: "The server crashed while ticking a '$1' at $2, $3, $4.",
			Solutions: []string{
				"Remove the entity near $2, $3, $4, for example with '/kill @e[type=$1,distance=..5]' or a world editor.",
				"Update or remove the mod that adds '$1' if the crash keeps coming back.",
			},
		},
		{
			ID:      "mixin-apply-failed",
			Match:   Line(`Mixin apply for mod ([\w-]+) failed ([\w.-]+\.json):(\S+)`),
			Message: "The mod '$1' failed to apply its mixin '$3'.",
			Solutions: []string{
				"Update '$1' to a build for your Minecraft and loader version.",
				"Look for another mod that conflicts with '$1'.",
			},
		},
		{
			ID:      "access-denied",
			Match:   Line(`java\.nio\.file\.AccessDeniedException: (\S+)`),
			Message: "The server was denied access to '$1'.",
			Solutions: []string{
				"Make sure the user running the server owns '$1' and can write to it.",
				"Close other programs that may hold a lock on the file.",
			},
		},
	},
}

// DefaultLibrary returns the built-in rule set.
func DefaultLibrary() *Library {
	return defaultLibrary
}

func classVersionsToJava(captures []string) []string {
	out := append([]string(nil), captures...)
	for i := 1; i < len(out); i++ {
		if v, err := strconv.Atoi(out[i]); err == nil && v > classFileOffset {
			out[i] = strconv.Itoa(v - classFileOffset)
		}
	}
	return out
}
