/*
Copyright © 2018 the PopBal authors.
This file is part of PopBal.

PopBal is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PopBal is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PopBal.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package popbal implements building blocks for population-balance models
// of particulate systems suspended in a turbulent fluid. It provides
// spatial scalar fields with elementwise arithmetic, symbolic field tags,
// and an expression graph that evaluates registered science expressions
// in dependency order. The science sub-models themselves live in the
// science subdirectory.
package popbal

// Version gives the version number.
const Version = "1.2.1"
