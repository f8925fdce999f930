package cli

import "fmt"

const flagsManual = `  *  -lat <latitude>:    Satellite latitude in degrees (-90 to 90)
  *  -lon <longitude>:   Satellite longitude in degrees (-180 to 180)
  *  -time <sat_time>:   Time instant to filter by, HH:MM:SS
  *  -rad <sat_radius>:  Satellite coverage radius (> 0)

  Optional arguments:

  *  -h:                 Show this manual
  *  -nm:                Use nautical miles for the coverage radius
                         (default option)
  *  -km:                Use kilometers for the coverage radius
  *  -tle <file>:        Take the footprint centre from the sub-satellite
                         point of this two-line element set; replaces
                         -lat and -lon and requires -date
  *  -date <YYYY-MM-DD>: Calendar date the -time instant falls on (UTC)
  *  -config <file>:     YAML settings file (default satcov.yaml if present)
`

// Usage returns the help manual for variant.
func Usage(v Variant) string {
	switch v {
	case Overlay:
		return fmt.Sprintf(`%[1]s <mandatory_arg> <optional_arg>

  Mandatory arguments:

  *  <geojson_file>:     GeoJSON file with FIR information
  *  <flights_file>:     Flight positions file per time instant.
                         It must have the .csv extension.
  *  <output_name>:      Output KML file name
%[2]s
Example:

%[1]s firs.geojson flights.csv output.kml -lat 15.092736 -lon -23.792856 -time 23:25:00 -rad 1000 -km
`, v, flagsManual)
	default:
		return fmt.Sprintf(`%[1]s <mandatory_arg> <optional_arg>

  Mandatory arguments:

  *  <flights_file>:     Flight positions file per time instant.
                         It must have the .csv extension.
%[2]s
Example:

%[1]s flights.csv -lat 15.092736 -lon -23.792856 -time 23:25:00 -rad 1000 -km
`, v, flagsManual)
	}
}
