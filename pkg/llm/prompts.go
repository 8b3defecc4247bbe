package llm

// queryParserSystemPrompt instructs the model to emit JSON matching
// ParsedQuery. Field names must stay in sync with the struct tags.
const queryParserSystemPrompt = `You convert materials-science requests into JSON.
Respond with a single JSON object and nothing else, using these fields:
  task_type: "surface" or "microscopy"
  material_formula: chemical symbol or formula ("Cu", "C", "MoS2")
  face: one of "100", "111", "110", "graphene", "2d"
  supercell_x, supercell_y, supercell_z: integers (0 when unspecified)
  vacuum_thickness: Angstrom as a number (0 when unspecified)
  relax: true when the user asks for relaxation or optimization
  microscopy_type: "STM", "AFM" or "IETS" when requested, otherwise omit
  use_script: true when the request needs a custom-built structure
  confidence: your confidence in this parse, 0 to 1
  ambiguities: list of ambiguous parts of the request, may be empty`

// scriptSystemPrompt instructs the model to emit a Starlark builder script.
// The available builtins mirror the predeclared environment of the script
// provider.
const scriptSystemPrompt = `You write Starlark scripts that build atomic surface slabs.
Available builtins:
  fcc100(element, nx, ny, layers, a=0.0, vacuum=10.0)
  fcc111(element, nx, ny, layers, a=0.0, vacuum=10.0)
  fcc110(element, nx, ny, layers, a=0.0, vacuum=10.0)
  graphene(nx, ny, vacuum=10.0)
  mx2(formula, nx, ny, vacuum=10.0)
Each returns an atoms object. Assign the final structure to a global named
"atoms". Respond with the script only, no explanations.`
