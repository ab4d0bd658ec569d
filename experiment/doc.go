// Package experiment loads modeling experiments from YAML files.
//
// A file describes a layered model, a source and receiver layout, the
// source wavelet, modeling options, record storage and resource limits:
//
//	model:
//	  shape: [120, 100]
//	  spacing: [10, 10]
//	  tops: [0, 500]
//	  velocity: [1.5, 1.8]
//	geometry:
//	  source_x: [400, 800]
//	  source_z: 20
//	  receivers: {start: 0, end: 1180, count: 60, depth: 10}
//	  dt: 2
//	  t: 1000
//	wavelet:
//	  f0: 0.01
//	options:
//	  save_data_to_disk: true
//	  file_path: ./records
//	  file_name: shot
//
// Unknown keys are rejected.
package experiment
